package protocol

import (
	"encoding/json"
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/jump/internal/domain"
)

func TestDecodeRoomRequests(t *testing.T) {
	for _, ev := range []Event{ConnectToRoom, LeaveRoom, SendRoomInvites, AcceptTransfer, RejectTransfer} {
		msg, err := Decode([]byte(`{"event":"` + string(ev) + `","data":{"roomId":"r1"}}`))
		require.NoError(t, err, ev)
		req, ok := msg.(RoomRequest)
		require.True(t, ok, ev)
		assert.Equal(t, ev, req.Event())
		assert.Equal(t, domain.RoomID("r1"), req.RoomID)
	}

	_, err := Decode([]byte(`{"event":"CONNECT_TO_ROOM","data":{}}`))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	_, err = Decode([]byte(`{"event":"LEAVE_ROOM"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestDecodeCreateRoom(t *testing.T) {
	raw := `{"event":"CREATE_ROOM","data":{"invited":{
		"u1":{"accepted":false,"displayName":{"userId":"u1","displayName":"alice","color":"#FBE8A6"}},
		"u2":{"accepted":false}}}}`
	msg, err := Decode([]byte(raw))
	require.NoError(t, err)
	req := msg.(CreateRoomRequest)
	require.Len(t, req.Invited, 2)
	assert.Equal(t, "alice", req.Invited["u1"].DisplayName.DisplayName)
}

func TestDecodeDescriptionValidatesType(t *testing.T) {
	offer := `{"event":"RTC_DESCRIPTION_OFFER","data":{"sdp":{"type":"offer","sdp":"v=0"},"roomId":"r1"}}`
	msg, err := Decode([]byte(offer))
	require.NoError(t, err)
	d := msg.(Description)
	assert.Equal(t, RTCOffer, d.Event())
	assert.Equal(t, webrtc.SDPTypeOffer, d.SDP.Type)

	mismatched := `{"event":"RTC_DESCRIPTION_OFFER","data":{"sdp":{"type":"answer","sdp":"v=0"},"roomId":"r1"}}`
	_, err = Decode([]byte(mismatched))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	pranswer := `{"event":"RTC_DESCRIPTION_ANSWER","data":{"sdp":{"type":"pranswer","sdp":"v=0"},"roomId":"r1"}}`
	_, err = Decode([]byte(pranswer))
	assert.NoError(t, err)

	empty := `{"event":"RTC_DESCRIPTION_ANSWER","data":{"sdp":{"type":"answer","sdp":""},"roomId":"r1"}}`
	_, err = Decode([]byte(empty))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestDecodeCandidate(t *testing.T) {
	raw := `{"event":"ICE_CANDIDATE","data":{"candidate":{"candidate":"candidate:1 1 udp 1 10.0.0.1 5000 typ host","sdpMid":"0","sdpMLineIndex":0},"roomId":"r1"}}`
	msg, err := Decode([]byte(raw))
	require.NoError(t, err)
	c := msg.(Candidate)
	require.NotNil(t, c.Candidate.SDPMid)
	assert.Equal(t, "0", *c.Candidate.SDPMid)
}

func TestDecodeFileMessageRequiresFileID(t *testing.T) {
	_, err := Decode([]byte(`{"event":"FILE_ACCEPT","data":{"roomId":"r1"}}`))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	msg, err := Decode([]byte(`{"event":"SEND_FILE_REQUEST","data":{"roomId":"r1","fileId":"f1","fileName":"a.txt","fileSize":12}}`))
	require.NoError(t, err)
	f := msg.(FileMessage)
	assert.Equal(t, SendFileRequest, f.Event())
	assert.EqualValues(t, 12, f.FileSize)
}

func TestDecodeRejectsUnknownAndGarbage(t *testing.T) {
	_, err := Decode([]byte(`{"event":"NOPE"}`))
	assert.ErrorIs(t, err, domain.ErrUnknownEvent)

	_, err = Decode([]byte(`not json`))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestEncodeEnvelope(t *testing.T) {
	b, err := Encode(RoomStatus, Status{Type: UserConnect, RoomID: "r1", Full: true, Owner: "u1", UserID: "u2"})
	require.NoError(t, err)

	var env struct {
		Event Event          `json:"event"`
		Data  map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(b, &env))
	assert.Equal(t, RoomStatus, env.Event)
	assert.Equal(t, "USER_CONNECT", env.Data["type"])
	assert.Equal(t, true, env.Data["full"])
	_, hasInvited := env.Data["invited"]
	assert.False(t, hasInvited)

	b, err = Encode(Pong, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"PONG"}`, string(b))
}
