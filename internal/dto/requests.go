package dto

import "github.com/yukikurage/teamtask/internal/models"

// LoginRequest is the body of POST /auth/local.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// RegisterRequest is the body of POST /auth/local/register.
type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	UserType    string `json:"userType" binding:"omitempty,oneof=individual corporate"`
	CompanyName string `json:"companyName" binding:"max=255"`
}

// UpdateUserRequest is the body of PUT /users/:id.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// TaskData is the data object for project task writes.
type TaskData struct {
	Title        Optional[string]            `json:"title"`
	Description  Optional[string]            `json:"description"`
	Deadline     Optional[Timestamp]         `json:"deadline"`
	Progress     Optional[int]               `json:"progress"`
	Status       Optional[models.TaskStatus] `json:"status"`
	Team         Relation                    `json:"team"`
	WorkPackages []WorkPackageData           `json:"workPackages"`
}

// WorkPackageData is the data object for work package writes, also used
// nested inside TaskData on create.
type WorkPackageData struct {
	Name        Optional[string]            `json:"name"`
	Percentage  Optional[int]               `json:"percentage"`
	Deadline    Optional[Timestamp]         `json:"deadline"`
	Status      Optional[models.TaskStatus] `json:"status"`
	ProjectTask Relation                    `json:"project_task"`
}

// TeamData is the data object for team writes.
type TeamData struct {
	Name        Optional[string] `json:"name"`
	Description Optional[string] `json:"description"`
	Members     RelationList     `json:"members"`
	Leader      Relation         `json:"leader"`
}

// NotificationData is the data object for notification writes.
type NotificationData struct {
	Title   Optional[string]                  `json:"title"`
	Message Optional[string]                  `json:"message"`
	Type    Optional[models.NotificationType] `json:"type"`
	Read    Optional[bool]                    `json:"read"`
	User    Relation                          `json:"user"`
}

// SuggestWorkPackagesRequest is the body of the AI breakdown endpoint.
type SuggestWorkPackagesRequest struct {
	Title       string              `json:"title" binding:"required"`
	Description string              `json:"description"`
	Deadline    Optional[Timestamp] `json:"deadline"`
}
