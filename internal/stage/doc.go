// Package stage names the screens of the experience and the transitions
// allowed between them.
//
// The flow controller consults Allowed before every stage change, and the
// experience binds one Handler to each stage so screens can set up and tear
// down their sessions as the controller moves.
package stage
