// Package state tracks which phase of play the game is in.
package state

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned for a state change the flow does not allow.
var ErrInvalidTransition = errors.New("invalid state transition")

// GameState represents the current state of the game
type GameState int

const (
	StateMenu GameState = iota
	StateLoading
	StatePlaying
	StatePaused
	StateGameOver
)

// String returns the string representation of the game state
func (s GameState) String() string {
	switch s {
	case StateMenu:
		return "Menu"
	case StateLoading:
		return "Loading"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateGameOver:
		return "GameOver"
	default:
		return "Unknown"
	}
}

var transitions = map[GameState][]GameState{
	StateMenu:     {StateLoading},
	StateLoading:  {StatePlaying, StateMenu},
	StatePlaying:  {StatePaused, StateGameOver, StateMenu},
	StatePaused:   {StatePlaying, StateMenu},
	StateGameOver: {StatePlaying, StateMenu},
}

// CanTransition reports whether the flow allows going from one state to another.
func CanTransition(from, to GameState) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Machine holds the current game state and enforces the allowed transitions.
type Machine struct {
	current  GameState
	previous GameState
}

// NewMachine starts a machine in the given state.
func NewMachine(initial GameState) *Machine {
	return &Machine{current: initial, previous: initial}
}

// Current returns the active state.
func (m *Machine) Current() GameState {
	return m.current
}

// Previous returns the state before the last transition.
func (m *Machine) Previous() GameState {
	return m.previous
}

// Is reports whether the machine is in s.
func (m *Machine) Is(s GameState) bool {
	return m.current == s
}

// Transition moves to the given state. Moving to the current state is a no-op.
func (m *Machine) Transition(to GameState) error {
	if to == m.current {
		return nil
	}
	if !CanTransition(m.current, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.current, to)
	}
	m.previous = m.current
	m.current = to
	return nil
}
