// Package dialogue implements Santa's guided conversation.
//
// The engine is a small finite-state flow: it collects a display name, then
// an age, then answers free text from an ordered table of keyword rules.
// Engine.Step is pure with respect to the State it is given; callers own the
// state and the message list (see package chat).
package dialogue
