package model

import "time"

// Names of the built-in context fields, as used in constraint definitions and stickiness settings.
const (
	FieldUserID        = "userId"
	FieldSessionID     = "sessionId"
	FieldRemoteAddress = "remoteAddress"
	FieldEnvironment   = "environment"
	FieldAppName       = "appName"
	FieldCurrentTime   = "currentTime"
)

// Context holds the request-scoped attributes that activation strategies and constraints are
// evaluated against.
//
// A Context is a plain value. Methods that appear to modify it return a modified copy, so a Context
// can be reused across goroutines and evaluation calls.
type Context struct {
	UserID        string
	SessionID     string
	RemoteAddress string
	Environment   string
	AppName       string
	// CurrentTime overrides the evaluation clock for date constraints. The zero value means "now".
	CurrentTime time.Time
	Properties  map[string]string
}

// Field resolves a context field by name. Built-in fields are checked first; any other name is looked up
// in Properties. The second return value is false if the field has no value.
func (c Context) Field(name string) (string, bool) {
	var value string
	switch name {
	case FieldUserID:
		value = c.UserID
	case FieldSessionID:
		value = c.SessionID
	case FieldRemoteAddress:
		value = c.RemoteAddress
	case FieldEnvironment:
		value = c.Environment
	case FieldAppName:
		value = c.AppName
	case FieldCurrentTime:
		if c.CurrentTime.IsZero() {
			return "", false
		}
		return c.CurrentTime.UTC().Format(time.RFC3339Nano), true
	default:
		v, ok := c.Properties[name]
		return v, ok
	}
	return value, value != ""
}

// WithProperty returns a copy of the context with one custom property set. The original Properties map
// is not modified.
func (c Context) WithProperty(name, value string) Context {
	props := make(map[string]string, len(c.Properties)+1)
	for k, v := range c.Properties {
		props[k] = v
	}
	props[name] = value
	c.Properties = props
	return c
}

// WithStaticFields returns a copy of the context in which an empty AppName or Environment has been
// filled in from the given values. Values already present in the context win.
func (c Context) WithStaticFields(appName, environment string) Context {
	if c.AppName == "" {
		c.AppName = appName
	}
	if c.Environment == "" {
		c.Environment = environment
	}
	return c
}
