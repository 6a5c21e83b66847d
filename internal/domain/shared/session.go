package shared

// Session identifies who is performing an operation. It is built once at the
// transport boundary and passed explicitly to every application service call.
type Session struct {
	ActorID   string
	ActorName string
	RequestID string
}

// SystemSession is used by internal event handlers that act on behalf of the service itself.
func SystemSession(requestID string) Session {
	return Session{ActorID: "system", ActorName: "system", RequestID: requestID}
}

// Actor returns the actor label recorded on audit rows.
func (s Session) Actor() string {
	if s.ActorName != "" {
		return s.ActorName
	}
	if s.ActorID != "" {
		return s.ActorID
	}
	return "anonymous"
}
