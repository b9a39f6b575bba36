package provision

import (
	"context"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/juju/errors"
)

// Resource property names of the custom resource.
const (
	PropAdminSecret = "DbSecretArn"
	PropUsersSecret = "UsersPasswordArn"
	PropTasksSecret = "TasksPasswordArn"
)

const (
	UsersDatabase = "users_db"
	TasksDatabase = "tasks_db"
)

// PhysicalResourceID identifies the provisioned resource across updates.
const PhysicalResourceID = "service-mesh-db-init"

// Initializer applies grants using admin credentials.
type Initializer interface {
	Initialize(ctx context.Context, admin Credentials, grants []Grant) error
}

// Request names the three secrets a provisioning pass needs.
type Request struct {
	AdminSecret string
	UsersSecret string
	TasksSecret string
}

type Handler struct {
	secrets SecretStore
	db      Initializer
}

func NewHandler(secrets SecretStore, db Initializer) *Handler {
	return &Handler{secrets: secrets, db: db}
}

// Provision fetches the secrets in req and ensures both service databases
// and their accounts exist. Nothing touches the database unless all three
// secrets resolve.
func (h *Handler) Provision(ctx context.Context, req Request) error {
	admin, err := h.secrets.Credentials(ctx, req.AdminSecret)
	if err != nil {
		return errors.Trace(err)
	}
	if admin.Host == "" {
		return errors.NotValidf("admin secret without host")
	}
	users, err := h.secrets.Credentials(ctx, req.UsersSecret)
	if err != nil {
		return errors.Trace(err)
	}
	tasks, err := h.secrets.Credentials(ctx, req.TasksSecret)
	if err != nil {
		return errors.Trace(err)
	}
	return h.db.Initialize(ctx, admin, []Grant{
		{Database: UsersDatabase, Username: users.Username, Password: users.Password},
		{Database: TasksDatabase, Username: tasks.Username, Password: tasks.Password},
	})
}

// Handle is the custom resource entry point. A returned error is reported
// to CloudFormation as FAILED with the error text as reason.
func (h *Handler) Handle(ctx context.Context, ev cfn.Event) (string, map[string]interface{}, error) {
	logger.Infof("%s request %s for %s", ev.RequestType, ev.RequestID, ev.LogicalResourceID)
	id := ev.PhysicalResourceID
	if id == "" {
		id = PhysicalResourceID
	}

	switch ev.RequestType {
	case cfn.RequestDelete:
		logger.Infof("delete request received, skipping database initialization")
		return id, nil, nil
	case cfn.RequestCreate, cfn.RequestUpdate:
		req := Request{
			AdminSecret: property(ev.ResourceProperties, PropAdminSecret),
			UsersSecret: property(ev.ResourceProperties, PropUsersSecret),
			TasksSecret: property(ev.ResourceProperties, PropTasksSecret),
		}
		if err := h.Provision(ctx, req); err != nil {
			logger.Errorf("database initialization failed: %v", err)
			return id, nil, err
		}
		return id, nil, nil
	default:
		logger.Errorf("unsupported request type %q", ev.RequestType)
		return id, nil, errors.New("Unsupported request type")
	}
}

func property(props map[string]interface{}, key string) string {
	s, _ := props[key].(string)
	return s
}
