package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"service-mesh/internal/schema"
	"service-mesh/internal/service"
)

const noTasksMessage = "No tasks found for this user"

type tasksAPI struct {
	tasks *service.TaskService
}

func (a *tasksAPI) register(r *mux.Router) {
	for _, p := range []string{"/tasks", "/tasks/"} {
		r.HandleFunc(p, a.createTaskHandler).Methods(http.MethodPost)
	}
	r.HandleFunc("/tasks/users/{user_id}", a.getUserTasksHandler).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}", a.getTaskHandler).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}", a.updateTaskHandler).Methods(http.MethodPut)
	r.HandleFunc("/tasks/{id}", a.deleteTaskHandler).Methods(http.MethodDelete)
}

func (a *tasksAPI) createTaskHandler(w http.ResponseWriter, r *http.Request) {
	var in schema.TaskCreate
	if err := schema.Decode(r.Body, &in); err != nil {
		writeError(w, r, err)
		return
	}
	task, err := a.tasks.CreateTask(r.Context(), in.NewTask())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, schema.NewTaskResponse(*task))
}

func (a *tasksAPI) getTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := schema.ParseID("task_id", mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	task, err := a.tasks.GetTask(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schema.NewTaskResponse(*task))
}

func (a *tasksAPI) getUserTasksHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := schema.ParseID("user_id", mux.Vars(r)["user_id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := a.tasks.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	switch res := res.(type) {
	case service.TasksFound:
		writeJSON(w, http.StatusOK, schema.NewTaskResponses(res.Tasks))
	case service.NoTasksForUser:
		w.Header().Set("X-Message", noTasksMessage)
		writeEmpty(w, http.StatusNoContent)
	}
}

func (a *tasksAPI) updateTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := schema.ParseID("task_id", mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in schema.TaskUpdate
	if err := schema.Decode(r.Body, &in); err != nil {
		writeError(w, r, err)
		return
	}
	changes, err := in.Changes()
	if err != nil {
		writeError(w, r, err)
		return
	}
	task, err := a.tasks.UpdateTask(r.Context(), id, changes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schema.NewTaskResponse(*task))
}

func (a *tasksAPI) deleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := schema.ParseID("task_id", mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.tasks.DeleteTask(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeEmpty(w, http.StatusOK)
}
