package media

import "github.com/roboricindustries/chatview/pkg/schemas/common"

const (
	DownloadRequestedType = "media.download.requested.v1"
	Exchange              = "media"
)

var DownloadRequestedMeta = common.EventMeta{
	EventType:  DownloadRequestedType,
	Exchange:   Exchange,
	RoutingKey: DownloadRequestedType,
}
