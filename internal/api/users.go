package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"service-mesh/internal/schema"
	"service-mesh/internal/service"
)

type usersAPI struct {
	users *service.UserService
}

func (a *usersAPI) register(r *mux.Router) {
	for _, p := range []string{"/users", "/users/"} {
		r.HandleFunc(p, a.createUserHandler).Methods(http.MethodPost)
	}
	r.HandleFunc("/users/{id}", a.getUserHandler).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}", a.updateUserHandler).Methods(http.MethodPut)
	r.HandleFunc("/users/{id}", a.deleteUserHandler).Methods(http.MethodDelete)
}

func (a *usersAPI) createUserHandler(w http.ResponseWriter, r *http.Request) {
	logger.Infof("creating user")
	var in schema.UserCreate
	if err := schema.Decode(r.Body, &in); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := a.users.Create(r.Context(), service.Signup{
		Email:    in.Email,
		Name:     in.Name,
		Lastname: in.Lastname,
		Password: in.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, schema.NewUserResponse(u))
}

func (a *usersAPI) getUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := schema.ParseID("user_id", mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := a.users.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schema.NewUserResponse(u))
}

func (a *usersAPI) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := schema.ParseID("user_id", mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in schema.UserUpdate
	if err := schema.Decode(r.Body, &in); err != nil {
		writeError(w, r, err)
		return
	}
	changes, err := in.Changes()
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := a.users.Update(r.Context(), id, changes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schema.NewUserResponse(u))
}

func (a *usersAPI) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := schema.ParseID("user_id", mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.users.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeEmpty(w, http.StatusOK)
}
