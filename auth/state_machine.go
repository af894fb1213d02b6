package auth

import (
	"context"
	"time"

	"newsfeed/model"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidTransition = "INVALID_USER_STATE_TRANSITION"
	textCodeTerminalState     = "TERMINAL_USER_STATE"
)

// ErrInvalidTransition is returned when a requested status change is not allowed.
var ErrInvalidTransition = goerrors.New("invalid user state transition", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidTransition).
	WithCode(goerrors.CodeBadRequest)

// ErrTerminalState is returned when attempting to move away from a resigned account.
var ErrTerminalState = goerrors.New("user state is terminal", goerrors.CategoryConflict).
	WithTextCode(textCodeTerminalState).
	WithCode(goerrors.CodeBadRequest)

// ActorRef identifies who/what triggered a transition.
type ActorRef struct {
	ID   string
	Type string
}

// TransitionMetadata captures extra context for a transition.
type TransitionMetadata struct {
	Reason string
}

// TransitionOption customizes a single transition.
type TransitionOption func(*transitionOptions)

// WithTransitionReason sets the human-readable reason for the transition.
func WithTransitionReason(reason string) TransitionOption {
	return func(opts *transitionOptions) {
		opts.metadata.Reason = reason
	}
}

// StateMachineOption customizes state machine construction.
type StateMachineOption func(*userStateMachine)

// WithStateMachineClock injects a custom clock (useful for tests).
func WithStateMachineClock(clock func() time.Time) StateMachineOption {
	return func(sm *userStateMachine) {
		if clock != nil {
			sm.now = clock
		}
	}
}

// WithStateMachineLogger overrides the logger used for transition events.
func WithStateMachineLogger(logger Logger) StateMachineOption {
	return func(sm *userStateMachine) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

// UserStateMachine defines lifecycle operations for users. The status model
// has exactly one transition, NORMAL to RESIGNED, and RESIGNED is terminal.
type UserStateMachine interface {
	Transition(ctx context.Context, actor ActorRef, user *model.User, target model.UserStatus, opts ...TransitionOption) (*model.User, error)
	CurrentStatus(user *model.User) model.UserStatus
}

// NewUserStateMachine returns the default implementation backed by the provided store.
func NewUserStateMachine(statuses StatusStore, opts ...StateMachineOption) UserStateMachine {
	sm := &userStateMachine{
		statuses: statuses,
		transitions: map[model.UserStatus]map[model.UserStatus]struct{}{
			model.UserStatusNormal: {
				model.UserStatusResigned: {},
			},
		},
		now:    time.Now,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}

	return sm
}

type userStateMachine struct {
	statuses    StatusStore
	transitions map[model.UserStatus]map[model.UserStatus]struct{}
	now         func() time.Time
	logger      Logger
}

type transitionOptions struct {
	metadata TransitionMetadata
}

func (sm *userStateMachine) Transition(ctx context.Context, actor ActorRef, user *model.User, target model.UserStatus, opts ...TransitionOption) (*model.User, error) {
	if user == nil {
		return nil, ErrInvalidTransition.WithMetadata(map[string]any{
			"target": target,
			"reason": "user is nil",
		})
	}

	user.EnsureStatus()
	from := user.Status
	if target == "" {
		return nil, ErrInvalidTransition.WithMetadata(map[string]any{
			"reason": "target status is empty",
		})
	}

	if from == target {
		return user, nil
	}

	options := &transitionOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	if from == model.UserStatusResigned {
		return nil, ErrTerminalState.WithMetadata(map[string]any{
			"from": from,
			"to":   target,
		})
	}

	if !sm.canTransition(from, target) {
		return nil, ErrInvalidTransition.WithMetadata(map[string]any{
			"from": from,
			"to":   target,
		})
	}

	changedAt := sm.now()
	updated, err := sm.statuses.UpdateStatus(ctx, user.ID, target, changedAt)
	if err != nil {
		return nil, err
	}

	sm.applyUpdates(user, updated, target, changedAt)

	sm.logger.Info(
		"user status changed",
		"user_id", user.ID.String(),
		"from", from,
		"to", target,
		"actor", actor.ID,
		"reason", options.metadata.Reason,
	)

	return user, nil
}

func (sm *userStateMachine) CurrentStatus(user *model.User) model.UserStatus {
	if user == nil {
		return ""
	}
	user.EnsureStatus()
	return user.Status
}

func (sm *userStateMachine) canTransition(from, to model.UserStatus) bool {
	if allowed, ok := sm.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}

func (sm *userStateMachine) applyUpdates(user, updated *model.User, target model.UserStatus, changedAt time.Time) {
	if updated != nil {
		if updated.Status != "" {
			user.Status = updated.Status
		} else {
			user.Status = target
		}
		user.StatusChangedAt = updated.StatusChangedAt
		return
	}

	user.Status = target
	user.StatusChangedAt = &changedAt
}
