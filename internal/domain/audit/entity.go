package audit

import "time"

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusPartial Status = "partial"
)

type ActorType string

const (
	ActorEmployee ActorType = "employee"
	ActorManager  ActorType = "manager"
	ActorSystem   ActorType = "system"
)

// Action tags
const (
	ActionSubmitLeave          = "SUBMIT_LEAVE"
	ActionReviewLeave          = "REVIEW_LEAVE"
	ActionSubmitOvertime       = "SUBMIT_OVERTIME"
	ActionReviewOvertime       = "REVIEW_OVERTIME"
	ActionSubmitCompOff        = "SUBMIT_COMP_OFF"
	ActionReviewCompOff        = "REVIEW_COMP_OFF"
	ActionEarnCompOff          = "EARN_COMP_OFF"
	ActionExpireCompOff        = "EXPIRE_COMP_OFF"
	ActionExpireCompOffSweep   = "EXPIRE_COMP_OFF_SWEEP"
	ActionRecordAttendance     = "RECORD_ATTENDANCE"
	ActionCorrectAttendance    = "CORRECT_ATTENDANCE"
	ActionCorrectAttendanceRun = "CORRECT_ATTENDANCE_BATCH"
	ActionCreateEmployee       = "CREATE_EMPLOYEE"
	ActionDeleteEmployee       = "DELETE_EMPLOYEE"
)

// Entity types
const (
	EntityLeave          = "LEAVE"
	EntityOvertime       = "OVERTIME"
	EntityCompOff        = "COMP_OFF"
	EntityCompOffRequest = "COMP_OFF_REQUEST"
	EntityAttendance     = "ATTENDANCE"
	EntityEmployee       = "EMPLOYEE"
)

// Actor identifies who performed an action.
type Actor struct {
	UserID *string
	Type   ActorType
}

func SystemActor() Actor {
	return Actor{Type: ActorSystem}
}

func EmployeeActor(id string) Actor {
	return Actor{UserID: &id, Type: ActorEmployee}
}

func ManagerActor(id string) Actor {
	return Actor{UserID: &id, Type: ActorManager}
}

// Entry is an append-only audit log row. Entries are never updated or deleted.
type Entry struct {
	ID           string
	UserID       *string
	ActorType    ActorType
	Action       string
	EntityType   string
	EntityID     *string
	Description  *string
	OldValues    any
	NewValues    any
	IPAddress    *string
	UserAgent    *string
	Status       Status
	ErrorMessage *string
	CreatedAt    time.Time
}
