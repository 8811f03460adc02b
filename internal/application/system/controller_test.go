package system

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/mgdk/internal/domain/entity"
	"github.com/younwookim/mgdk/internal/infrastructure/config"
)

const testDT = 1.0 / 60.0

// scriptedEnv answers overlap queries from fixed contacts. The test body sits
// at the origin, so the query direction tells the sensors apart.
type scriptedEnv struct {
	now     float64
	gravity mgl64.Vec3

	ground *entity.Contact
	left   *entity.Contact
	right  *entity.Contact

	removed []entity.EntityID
}

func newScriptedEnv() *scriptedEnv {
	return &scriptedEnv{gravity: mgl64.Vec3{0, -9.81, 0}}
}

func (e *scriptedEnv) Now() float64              { return e.now }
func (e *scriptedEnv) Gravity() mgl64.Vec3       { return e.gravity }
func (e *scriptedEnv) Remove(id entity.EntityID) { e.removed = append(e.removed, id) }

func (e *scriptedEnv) Overlap(center mgl64.Vec3, _ float64, _ entity.LayerMask) (entity.Contact, bool) {
	var c *entity.Contact
	switch {
	case center.Y() < 0:
		c = e.ground
	case center.X() < 0:
		c = e.left
	case center.X() > 0:
		c = e.right
	}
	if c == nil {
		return entity.Contact{}, false
	}
	return *c, true
}

var (
	floorContact     = &entity.Contact{ID: 7, Position: mgl64.Vec3{0, -1, 0}}
	leftWallContact  = &entity.Contact{ID: 8, Position: mgl64.Vec3{-1, 0, 0}}
	rightWallContact = &entity.Contact{ID: 9, Position: mgl64.Vec3{1, 0, 0}}
)

func newTestController(t *testing.T, tune func(*config.ControllerConfig)) *Controller {
	t.Helper()
	cfg := config.DefaultControllerConfig()
	if tune != nil {
		tune(&cfg)
	}
	c, err := NewController(cfg)
	require.NoError(t, err)
	return c
}

func newTestBody() *entity.Body {
	return entity.NewBody(1, mgl64.Vec3{}, 0.45, 0.9)
}

// land ticks once on the floor so the controller starts out grounded.
func land(c *Controller, body *entity.Body, env *scriptedEnv) {
	env.ground = floorContact
	c.Tick(body, entity.FrameInput{}, env, testDT)
}

func TestNewController_RejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultControllerConfig()
	cfg.Detection.GrounderRadius = 0

	c, err := NewController(cfg)
	assert.Nil(t, c)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))
}

func TestController_InitialState(t *testing.T) {
	c := newTestController(t, nil)
	s := c.State()

	assert.False(t, c.IsGrounded())
	assert.False(t, c.Removed())
	assert.True(t, math.IsInf(s.TimeLeftGrounded, -1))
	assert.True(t, math.IsInf(s.TimeLastWallJumped, -1))
	assert.Equal(t, 100.0, s.MovementLerp)
}

func TestController_MissingCollaboratorsNoOp(t *testing.T) {
	c := newTestController(t, nil)
	env := newScriptedEnv()
	env.ground = floorContact

	assert.NotPanics(t, func() {
		c.Tick(nil, entity.FrameInput{JumpDown: true}, env, testDT)
	})
	assert.False(t, c.IsGrounded())

	body := newTestBody()
	body.Velocity = mgl64.Vec3{1, 2, 0}
	assert.NotPanics(t, func() {
		c.Tick(body, entity.FrameInput{JumpDown: true}, nil, testDT)
	})
	assert.Equal(t, mgl64.Vec3{1, 2, 0}, body.Velocity)
}

func TestController_Facing(t *testing.T) {
	c := newTestController(t, nil)
	env := newScriptedEnv()
	body := newTestBody()

	steps := []struct {
		rawX int
		want bool
	}{
		{0, false},
		{-1, true},
		{0, true},
		{-1, true},
		{1, false},
		{0, false},
	}
	for i, step := range steps {
		c.Tick(body, entity.FrameInput{RawX: step.rawX}, env, 0)
		assert.Equal(t, step.want, c.State().FacingLeft, "step %d", i)
		assert.Equal(t, step.want, body.FacingLeft, "step %d", i)
	}
}

func TestController_Landing(t *testing.T) {
	c := newTestController(t, nil)
	env := newScriptedEnv()
	body := newTestBody()

	c.state.HasDashed = true
	c.state.HasJumped = true
	c.state.HasDoubleJumped = true
	c.state.MovementLerp = 5

	land(c, body, env)

	s := c.State()
	assert.True(t, c.IsGrounded())
	assert.False(t, s.HasDashed)
	assert.False(t, s.HasJumped)
	assert.False(t, s.HasDoubleJumped)
	assert.Equal(t, 100.0, s.MovementLerp)
	assert.True(t, body.AttachedTo(floorContact.ID))
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, body.Attachment.Offset)
}

func TestController_LeavingGround(t *testing.T) {
	c := newTestController(t, nil)
	env := newScriptedEnv()
	body := newTestBody()
	land(c, body, env)

	env.ground = nil
	env.now = 2.5
	c.Tick(body, entity.FrameInput{}, env, testDT)

	assert.False(t, c.IsGrounded())
	assert.Equal(t, 2.5, c.State().TimeLeftGrounded)
	assert.False(t, body.IsAttached())
}

func TestController_GroundJump(t *testing.T) {
	c := newTestController(t, nil)
	env := newScriptedEnv()
	body := newTestBody()
	land(c, body, env)

	c.Tick(body, entity.FrameInput{JumpDown: true, JumpHeld: true}, env, testDT)

	assert.Equal(t, mgl64.Vec3{0, 15, 0}, body.Velocity)
	assert.True(t, c.State().HasJumped)
	assert.False(t, c.State().HasDoubleJumped)
}

func TestController_GroundJumpKeepsHorizontalVelocity(t *testing.T) {
	walking := entity.FrameInput{X: 0.5, RawX: 1, Right: true, JumpHeld: true}
	jumping := walking
	jumping.JumpDown = true

	run := func(in entity.FrameInput) *entity.Body {
		c := newTestController(t, nil)
		env := newScriptedEnv()
		body := newTestBody()
		land(c, body, env)
		body.Velocity = mgl64.Vec3{2, 0, 0}
		c.Tick(body, in, env, testDT)
		return body
	}

	ref := run(walking)
	got := run(jumping)

	assert.InDelta(t, ref.Velocity.X(), got.Velocity.X(), 1e-9)
	assert.Equal(t, 15.0, got.Velocity.Y())
}

func TestController_CoyoteJump(t *testing.T) {
	c := newTestController(t, func(cfg *config.ControllerConfig) {
		cfg.Jump.EnableDoubleJump = false
	})
	env := newScriptedEnv()
	body := newTestBody()
	land(c, body, env)

	env.ground = nil
	env.now = 1.0
	c.Tick(body, entity.FrameInput{}, env, testDT)

	env.now = 1.15
	body.Velocity = mgl64.Vec3{}
	c.Tick(body, entity.FrameInput{JumpDown: true, JumpHeld: true}, env, 0)

	assert.Equal(t, 15.0, body.Velocity.Y())
	assert.True(t, c.State().HasJumped)
	assert.False(t, c.State().HasDoubleJumped)
}

func TestController_JumpAfterCoyoteWindow(t *testing.T) {
	c := newTestController(t, func(cfg *config.ControllerConfig) {
		cfg.Jump.EnableDoubleJump = false
	})
	env := newScriptedEnv()
	body := newTestBody()
	land(c, body, env)

	env.ground = nil
	env.now = 1.0
	c.Tick(body, entity.FrameInput{}, env, testDT)

	env.now = 1.5
	body.Velocity = mgl64.Vec3{0, -3, 0}
	before := c.State()
	c.Tick(body, entity.FrameInput{JumpDown: true, JumpHeld: true}, env, 0)

	assert.Equal(t, mgl64.Vec3{0, -3, 0}, body.Velocity)
	after := c.State()
	assert.Equal(t, before.HasJumped, after.HasJumped)
	assert.Equal(t, before.HasDoubleJumped, after.HasDoubleJumped)
}

func TestController_DoubleJump(t *testing.T) {
	tests := []struct {
		name          string
		enabled       bool
		hasJumped     bool
		hasDoubleJump bool
		wantVY        float64
		wantDouble    bool
	}{
		{"second jump", true, true, false, 15, true},
		{"disabled", false, true, false, -3, false},
		{"already used", true, true, true, -3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(t, func(cfg *config.ControllerConfig) {
				cfg.Jump.EnableDoubleJump = tt.enabled
			})
			env := newScriptedEnv()
			env.now = 10
			body := newTestBody()
			body.Velocity = mgl64.Vec3{0, -3, 0}
			c.state.HasJumped = tt.hasJumped
			c.state.HasDoubleJumped = tt.hasDoubleJump

			c.Tick(body, entity.FrameInput{JumpDown: true, JumpHeld: true}, env, 0)

			assert.Equal(t, tt.wantVY, body.Velocity.Y())
			assert.Equal(t, tt.wantDouble, c.State().HasDoubleJumped)
		})
	}
}

func TestController_WallJump(t *testing.T) {
	tests := []struct {
		name   string
		left   bool
		wantVX float64
	}{
		{"off left wall", true, 15},
		{"off right wall", false, -15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(t, func(cfg *config.ControllerConfig) {
				cfg.Jump.EnableDoubleJump = false
			})
			env := newScriptedEnv()
			env.now = 3
			if tt.left {
				env.left = leftWallContact
			} else {
				env.right = rightWallContact
			}
			body := newTestBody()
			body.Velocity = mgl64.Vec3{0, -2, 0}

			c.Tick(body, entity.FrameInput{JumpDown: true, JumpHeld: true}, env, testDT)

			s := c.State()
			assert.Equal(t, mgl64.Vec3{tt.wantVX, 15, 0}, body.Velocity)
			assert.Equal(t, 3.0, s.TimeLastWallJumped)
			assert.Equal(t, 5.0, s.MovementLerp)
			assert.True(t, s.HasJumped)
			assert.True(t, s.HasDoubleJumped)
		})
	}
}

func TestController_GroundedAgainstWallJumpsNormally(t *testing.T) {
	c := newTestController(t, nil)
	env := newScriptedEnv()
	body := newTestBody()
	land(c, body, env)

	env.left = leftWallContact
	c.Tick(body, entity.FrameInput{JumpDown: true, JumpHeld: true}, env, testDT)

	assert.Equal(t, mgl64.Vec3{0, 15, 0}, body.Velocity)
	assert.False(t, c.State().HasDoubleJumped)
	assert.True(t, math.IsInf(c.State().TimeLastWallJumped, -1))
}

func TestController_FallShaping(t *testing.T) {
	tests := []struct {
		name     string
		vy       float64
		held     bool
		wantFast bool
	}{
		{"falling", -1, true, true},
		{"rising below falloff", 5, true, true},
		{"rising with jump held", 12, true, false},
		{"rising with jump released", 12, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(t, nil)
			env := newScriptedEnv()
			body := newTestBody()
			body.Velocity = mgl64.Vec3{0, tt.vy, 0}

			c.Tick(body, entity.FrameInput{JumpHeld: tt.held}, env, testDT)

			want := tt.vy
			if tt.wantFast {
				want += 7 * -9.81 * testDT
			}
			assert.InDelta(t, want, body.Velocity.Y(), 1e-9)
		})
	}
}

func TestController_Walking(t *testing.T) {
	t.Run("accelerates toward held direction", func(t *testing.T) {
		c := newTestController(t, nil)
		env := newScriptedEnv()
		body := newTestBody()
		land(c, body, env)

		c.Tick(body, entity.FrameInput{RawX: 1, Right: true}, env, 0.1)

		// grounded: input 0 -> 0.2, target vx 0.8, reached within lerp
		assert.InDelta(t, 0.8, body.Velocity.X(), 1e-9)
	})

	t.Run("airborne acceleration is halved", func(t *testing.T) {
		c := newTestController(t, nil)
		env := newScriptedEnv()
		body := newTestBody()

		c.Tick(body, entity.FrameInput{RawX: 1, Right: true, JumpHeld: true}, env, 0.1)

		assert.InDelta(t, 0.4, body.Velocity.X(), 1e-9)
	})

	t.Run("reversal snaps input to zero", func(t *testing.T) {
		c := newTestController(t, nil)
		env := newScriptedEnv()
		body := newTestBody()
		land(c, body, env)
		body.Velocity = mgl64.Vec3{4, 0, 0}

		c.Tick(body, entity.FrameInput{X: 1, RawX: -1, Left: true}, env, 0.1)

		assert.InDelta(t, -0.8, body.Velocity.X(), 1e-9)
	})

	t.Run("lerp limits velocity change", func(t *testing.T) {
		c := newTestController(t, nil)
		env := newScriptedEnv()
		body := newTestBody()
		land(c, body, env)
		c.state.MovementLerp = 5

		c.Tick(body, entity.FrameInput{X: 1, RawX: 1, Right: true}, env, 0.1)

		assert.InDelta(t, 0.5, body.Velocity.X(), 1e-9)
	})
}

func TestController_WallSlide(t *testing.T) {
	c := newTestController(t, nil)
	env := newScriptedEnv()
	env.right = rightWallContact
	body := newTestBody()
	body.Velocity = mgl64.Vec3{0, -5, 0}

	pushRight := entity.FrameInput{X: 0.5, RawX: 1, Right: true}
	c.Tick(body, pushRight, env, testDT)

	assert.True(t, c.State().WallSliding)
	assert.Equal(t, mgl64.Vec3{0, -1, 0}, body.Velocity)
	assert.True(t, body.AttachedTo(rightWallContact.ID))

	c.Tick(body, entity.FrameInput{}, env, testDT)

	assert.False(t, c.State().WallSliding)
	assert.False(t, body.IsAttached())
}

func TestController_WallSlideKeepsUpwardVelocity(t *testing.T) {
	c := newTestController(t, nil)
	env := newScriptedEnv()
	env.right = rightWallContact
	body := newTestBody()
	body.Velocity = mgl64.Vec3{0, 12, 0}

	c.Tick(body, entity.FrameInput{X: 0.5, RawX: 1, Right: true, JumpHeld: true}, env, testDT)

	assert.True(t, c.State().WallSliding)
	assert.Greater(t, body.Velocity.Y(), 0.0)
}

func TestController_WallGrab(t *testing.T) {
	tests := []struct {
		name   string
		rawY   int
		wantVY float64
	}{
		{"hold", 0, 0},
		{"climb", 1, 0.8},
		{"descend", -1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(t, nil)
			env := newScriptedEnv()
			env.right = rightWallContact
			body := newTestBody()
			body.FacingLeft = true
			body.Velocity = mgl64.Vec3{3, -4, 0}

			in := entity.FrameInput{X: 1, RawX: 1, RawY: tt.rawY, Right: true, GrabHeld: true}
			c.Tick(body, in, env, testDT)

			assert.True(t, c.State().Grabbing)
			assert.False(t, body.GravityEnabled)
			assert.False(t, body.FacingLeft, "faces the right wall")
			assert.Equal(t, 0.0, body.Velocity.X())
			assert.InDelta(t, tt.wantVY, body.Velocity.Y(), 1e-9)
		})
	}
}

func TestController_GrabFreezesFacing(t *testing.T) {
	c := newTestController(t, nil)
	env := newScriptedEnv()
	env.right = rightWallContact
	body := newTestBody()

	c.Tick(body, entity.FrameInput{GrabHeld: true}, env, testDT)
	require.True(t, c.State().Grabbing)

	c.Tick(body, entity.FrameInput{RawX: -1, Left: true, GrabHeld: true}, env, testDT)

	assert.False(t, c.State().FacingLeft)
	assert.Equal(t, 0.0, body.Velocity.X())
}

func TestController_GrabLockoutAfterWallJump(t *testing.T) {
	c := newTestController(t, nil)
	env := newScriptedEnv()
	env.left = leftWallContact
	env.now = 1
	body := newTestBody()

	c.Tick(body, entity.FrameInput{JumpDown: true, JumpHeld: true}, env, testDT)

	env.now = 1.1
	c.Tick(body, entity.FrameInput{GrabHeld: true, JumpHeld: true}, env, testDT)
	assert.False(t, c.State().Grabbing)
	assert.True(t, body.GravityEnabled)

	env.now = 1.3
	c.Tick(body, entity.FrameInput{GrabHeld: true}, env, testDT)
	assert.True(t, c.State().Grabbing)
	assert.False(t, body.GravityEnabled)

	c.Tick(body, entity.FrameInput{}, env, testDT)
	assert.False(t, c.State().Grabbing)
	assert.True(t, body.GravityEnabled)
}

func TestController_GrabWallJump(t *testing.T) {
	c := newTestController(t, nil)
	env := newScriptedEnv()
	env.right = rightWallContact
	body := newTestBody()
	land(c, body, env)

	c.Tick(body, entity.FrameInput{GrabHeld: true}, env, testDT)
	require.True(t, c.State().Grabbing)

	env.now = 1
	c.Tick(body, entity.FrameInput{GrabHeld: true, JumpDown: true, JumpHeld: true}, env, testDT)

	// The jump lockout releases the grab in the same tick
	assert.False(t, c.State().Grabbing)
	assert.Equal(t, mgl64.Vec3{-15, 15, 0}, body.Velocity)
	assert.Equal(t, 1.0, c.State().TimeLastWallJumped)
}

func TestController_Dash(t *testing.T) {
	c := newTestController(t, nil)
	env := newScriptedEnv()
	body := newTestBody()

	c.Tick(body, entity.FrameInput{RawX: 1, RawY: 1, DashDown: true}, env, testDT)

	dir := mgl64.Vec3{1, 1, 0}.Normalize()
	dashVel := dir.Mul(15)
	s := c.State()
	assert.True(t, s.Dashing)
	assert.True(t, s.HasDashed)
	assert.Equal(t, 0.0, s.TimeDashStarted)
	assert.False(t, body.GravityEnabled)
	assert.True(t, body.Velocity.ApproxEqual(dashVel))

	// Nothing else moves the body mid-dash
	env.now = 0.5
	body.Velocity = mgl64.Vec3{-7, 20, 0}
	c.Tick(body, entity.FrameInput{X: -1, RawX: -1, Left: true, JumpDown: true, GrabHeld: true}, env, testDT)
	assert.True(t, c.State().Dashing)
	assert.True(t, body.Velocity.ApproxEqual(dashVel))
	assert.False(t, body.GravityEnabled)

	env.now = 1.0001
	c.Tick(body, entity.FrameInput{}, env, testDT)
	assert.False(t, c.State().Dashing)
	assert.True(t, body.GravityEnabled)
	assert.InDelta(t, dashVel.X(), body.Velocity.X(), 1e-9)
	assert.Equal(t, 3.0, body.Velocity.Y())
}

func TestController_DashUsesFacingWithoutInput(t *testing.T) {
	c := newTestController(t, nil)
	env := newScriptedEnv()
	body := newTestBody()

	c.Tick(body, entity.FrameInput{RawX: -1}, env, 0)
	c.Tick(body, entity.FrameInput{DashDown: true}, env, 0)

	assert.Equal(t, mgl64.Vec3{-1, 0, 0}, c.State().DashDirection)
	assert.Equal(t, mgl64.Vec3{-15, 0, 0}, body.Velocity)
}

func TestController_DashRequiresReset(t *testing.T) {
	c := newTestController(t, nil)
	env := newScriptedEnv()
	body := newTestBody()

	c.Tick(body, entity.FrameInput{RawX: 1, DashDown: true}, env, testDT)
	env.now = 2
	c.Tick(body, entity.FrameInput{}, env, testDT)
	require.False(t, c.State().Dashing)

	env.now = 50
	c.Tick(body, entity.FrameInput{RawX: 1, DashDown: true}, env, testDT)
	assert.False(t, c.State().Dashing, "no dash until reset")

	c.OnTriggerEnter(body, entity.Trigger{ID: 20, Kind: entity.TriggerPickup}, env)
	c.Tick(body, entity.FrameInput{RawX: 1, DashDown: true}, env, testDT)
	assert.True(t, c.State().Dashing)

	env.now = 52
	c.Tick(body, entity.FrameInput{}, env, testDT)
	land(c, body, env)
	c.Tick(body, entity.FrameInput{RawX: 1, DashDown: true}, env, testDT)
	assert.True(t, c.State().Dashing)
}

func TestController_DeathTrigger(t *testing.T) {
	c := newTestController(t, nil)
	env := newScriptedEnv()
	body := newTestBody()
	c.state.HasDashed = true

	c.OnTriggerEnter(body, entity.Trigger{ID: 30, Kind: entity.TriggerDeath}, env)

	assert.True(t, c.Removed())
	assert.Equal(t, []entity.EntityID{body.ID}, env.removed)

	body.Velocity = mgl64.Vec3{1, 1, 0}
	c.Tick(body, entity.FrameInput{JumpDown: true}, env, testDT)
	assert.Equal(t, mgl64.Vec3{1, 1, 0}, body.Velocity)
}

func TestController_OnCollision(t *testing.T) {
	var impacts []float64
	cfg := config.DefaultControllerConfig()
	c, err := NewController(cfg, WithImpactHandler(func(_ *entity.Body, speed float64) {
		impacts = append(impacts, speed)
	}))
	require.NoError(t, err)

	env := newScriptedEnv()
	body := newTestBody()

	assert.False(t, c.OnCollision(body, 10), "airborne impacts are ignored")

	land(c, body, env)
	assert.False(t, c.OnCollision(body, 1))
	assert.True(t, c.OnCollision(body, 10))
	assert.Equal(t, []float64{10}, impacts)
}

func TestController_Reconfigure(t *testing.T) {
	c := newTestController(t, nil)

	bad := config.DefaultControllerConfig()
	bad.Movement.WalkSpeed = -1
	assert.Error(t, c.Reconfigure(bad))
	assert.Equal(t, 4.0, c.Config().Movement.WalkSpeed)

	good := config.DefaultControllerConfig()
	good.Movement.WalkSpeed = 6
	require.NoError(t, c.Reconfigure(good))
	assert.Equal(t, 6.0, c.Config().Movement.WalkSpeed)
}
