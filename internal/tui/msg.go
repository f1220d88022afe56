package tui

import (
	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/usecase"
)

// Msg is the sealed interface for all board messages.
//
// go-sumtype:decl Msg
type Msg interface {
	sealed()
}

// MsgTasksLoaded is sent when tasks are loaded from the repository.
type MsgTasksLoaded struct {
	Items []usecase.TaskItem
}

func (MsgTasksLoaded) sealed() {}

// MsgPreviewLoaded carries the captured output of the selected task's session.
type MsgPreviewLoaded struct {
	TaskID string
	Output string
}

func (MsgPreviewLoaded) sealed() {}

// MsgTransitioned is sent after a task moved between statuses.
type MsgTransitioned struct {
	Task     *domain.Task
	From     domain.Status
	To       domain.Status
	Warnings []string
}

func (MsgTransitioned) sealed() {}

// MsgTaskCreated is sent when a new task is created.
type MsgTaskCreated struct {
	Task *domain.Task
}

func (MsgTaskCreated) sealed() {}

// MsgTaskDeleted is sent when a task is deleted.
type MsgTaskDeleted struct {
	TaskID   string
	Warnings []string
}

func (MsgTaskDeleted) sealed() {}

// MsgNeedsConfirm asks the user before retrying a transition.
type MsgNeedsConfirm struct {
	TaskID string
	Reason string
	Action ConfirmAction
}

func (MsgNeedsConfirm) sealed() {}

// MsgError is sent when an error occurs.
type MsgError struct {
	Err error
}

func (MsgError) sealed() {}

// MsgReloadTasks triggers a reload, e.g. after returning from an attached session.
type MsgReloadTasks struct{}

func (MsgReloadTasks) sealed() {}

// MsgStoreChanged is sent when the task database or a session directory changed on disk.
type MsgStoreChanged struct{}

func (MsgStoreChanged) sealed() {}

// MsgPreviewTick schedules the next session preview refresh.
type MsgPreviewTick struct{}

func (MsgPreviewTick) sealed() {}
