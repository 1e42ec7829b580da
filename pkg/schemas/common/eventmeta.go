package common

type EventMeta struct {
	EventType  string // e.g. "chat.viewstate.rendered.v1"
	Exchange   string // e.g. "chat.viewstate"
	RoutingKey string // e.g. "chat.viewstate.rendered.v1"
}
