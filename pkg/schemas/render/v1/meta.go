package render

import "github.com/roboricindustries/chatview/pkg/schemas/common"

const (
	RequestedType = "chat.render.requested.v1"
	RenderedType  = "chat.viewstate.rendered.v1"

	RequestExchange  = "chat.render"
	RenderedExchange = "chat.viewstate"
)

var RequestedMeta = common.EventMeta{
	EventType:  RequestedType,
	Exchange:   RequestExchange,
	RoutingKey: RequestedType,
}

var RenderedMeta = common.EventMeta{
	EventType:  RenderedType,
	Exchange:   RenderedExchange,
	RoutingKey: RenderedType,
}
