package message

import (
	"fmt"
	"strconv"
	"strings"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/danmuck/hyperionctl/internal/protocol/hyperionnet"
)

// Field slots from hyperion_reply.fbs.
const (
	slotReplyError      flatbuffers.VOffsetT = 4
	slotReplyVideo      flatbuffers.VOffsetT = 6
	slotReplyRegistered flatbuffers.VOffsetT = 8
)

// unset is the schema default for video and registered.
const unset int32 = -1

// VideoMode is the server's current video mode.
type VideoMode int32

const (
	VideoMode2D    VideoMode = 0
	VideoMode3DSBS VideoMode = 1
	VideoMode3DTAB VideoMode = 2
)

func (m VideoMode) String() string {
	switch m {
	case VideoMode2D:
		return "2D"
	case VideoMode3DSBS:
		return "3DSBS"
	case VideoMode3DTAB:
		return "3DTAB"
	default:
		return "VideoMode(" + strconv.FormatInt(int64(m), 10) + ")"
	}
}

// Reply is a decoded server acknowledgement. A nil field was not present.
type Reply struct {
	// Error is set when the server rejected the request.
	Error *string
	// Video is the server's video mode, when reported.
	Video *VideoMode
	// Registered is the priority the server registered for this client.
	Registered *int32
}

// RejectedError carries a server-reported rejection reason.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return "message: server rejected request: " + e.Reason
}

// Rejected reports whether the server set the error field.
func (r Reply) Rejected() bool {
	return r.Error != nil
}

// Err returns the rejection as an error, or nil for an accepted request.
func (r Reply) Err() error {
	if r.Error == nil {
		return nil
	}
	return &RejectedError{Reason: *r.Error}
}

func (r Reply) String() string {
	parts := make([]string, 0, 3)
	if r.Error != nil {
		parts = append(parts, fmt.Sprintf("error=%q", *r.Error))
	}
	if r.Video != nil {
		parts = append(parts, "video="+r.Video.String())
	}
	if r.Registered != nil {
		parts = append(parts, fmt.Sprintf("registered=%d", *r.Registered))
	}
	return "reply{" + strings.Join(parts, " ") + "}"
}

// DecodeReply parses an unframed reply buffer.
func DecodeReply(payload []byte) (reply Reply, err error) {
	defer recoverMalformed(&err)

	v := verifier{buf: payload}
	pos, err := v.root()
	if err != nil {
		return Reply{}, err
	}
	root := &hyperionnet.Reply{}
	root.Init(payload, pos)

	hasError, err := v.vector(root.Table(), slotReplyError, 1)
	if err != nil {
		return Reply{}, err
	}
	if err := v.scalar(root.Table(), slotReplyVideo, 4); err != nil {
		return Reply{}, err
	}
	if err := v.scalar(root.Table(), slotReplyRegistered, 4); err != nil {
		return Reply{}, err
	}

	if hasError {
		msg := string(root.Error())
		reply.Error = &msg
	}
	if video := root.Video(); video != unset {
		mode := VideoMode(video)
		reply.Video = &mode
	}
	if registered := root.Registered(); registered != unset {
		reply.Registered = &registered
	}
	return reply, nil
}

// EncodeReply serializes r the way a lighting server would.
func EncodeReply(r Reply) []byte {
	b := flatbuffers.NewBuilder(64)
	var errMsg flatbuffers.UOffsetT
	if r.Error != nil {
		errMsg = b.CreateString(*r.Error)
	}
	hyperionnet.ReplyStart(b)
	if r.Error != nil {
		hyperionnet.ReplyAddError(b, errMsg)
	}
	if r.Video != nil {
		hyperionnet.ReplyAddVideo(b, int32(*r.Video))
	}
	if r.Registered != nil {
		hyperionnet.ReplyAddRegistered(b, *r.Registered)
	}
	b.Finish(hyperionnet.ReplyEnd(b))
	return b.FinishedBytes()
}
