package stage

import "context"

// Handler is the screen bound to a stage. Enter runs after the controller
// moves into the stage; Exit runs before it leaves and must cancel any timers
// the screen scheduled.
type Handler interface {
	Enter(ctx context.Context) error
	Exit(ctx context.Context)
	HealthCheck(ctx context.Context) Health
}
