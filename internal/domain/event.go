package domain

const (
	EventDraft     = "draft"
	EventActive    = "active"
	EventCompleted = "completed"
)

// EventDescriptor is the backend's view of a certificate event.
// AssignedRoles scopes which operator roles may see and act on it.
type EventDescriptor struct {
	EventID       string   `json:"id" dynamodbav:"event_id"`
	Name          string   `json:"name" dynamodbav:"name"`
	Status        string   `json:"status" dynamodbav:"status"`
	AssignedRoles []string `json:"assigned_roles" dynamodbav:"assigned_roles"`
}

type EventInput struct {
	Name          string   `json:"name" validate:"required"`
	Status        string   `json:"status" validate:"required,oneof=draft active completed"`
	AssignedRoles []string `json:"assigned_roles" validate:"required,min=1,dive,oneof=admin organizer viewer"`
}

// VisibleTo reports whether an operator holding role may see the event.
// Admins see everything.
func (e *EventDescriptor) VisibleTo(role string) bool {
	if role == RoleAdmin {
		return true
	}
	for _, r := range e.AssignedRoles {
		if r == role {
			return true
		}
	}
	return false
}
