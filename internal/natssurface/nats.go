// Package natssurface is a second concrete carrier for the request
// surface, over NATS request/reply subjects, demonstrating that
// internal/surface.Dispatch is carrier-agnostic per spec §6.
package natssurface

import (
	"encoding/json"

	"github.com/nats-io/nats.go"

	"buddyd/internal/attach"
	"buddyd/internal/devlog"
	"buddyd/internal/metrics"
	"buddyd/internal/surface"
	"buddyd/pkg/device"
)

// wireRequest mirrors httpsurface's wire shape but carries Buf as raw
// bytes, since NATS messages are binary-safe end to end.
type wireRequest struct {
	Size int    `json:"size,omitempty"`
	Ref  int    `json:"ref,omitempty"`
	Buf  []byte `json:"buf,omitempty"`
}

type wireResponse struct {
	ReturnVal int    `json:"return_val"`
	Data      []byte `json:"data,omitempty"`
}

// Listener subscribes to request subjects for one device.
type Listener struct {
	conn *nats.Conn
	sub  *nats.Subscription
}

// subjectPattern returns the wildcard subject a device with the given name
// listens on; the final token carries the request kind, e.g.
// buddyd.buddy0.request.get, buddyd.buddy0.request.free.
func subjectPattern(deviceName string) string {
	return "buddyd." + deviceName + ".request.*"
}

// Listen connects to url and starts serving requests for dev on
// buddyd.<deviceName>.request.<kind>, sharing gate with any other carrier.
func Listen(url, deviceName string, dev *device.Device, gate *attach.Gate) (*Listener, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}

	sub, err := conn.Subscribe(subjectPattern(deviceName), func(msg *nats.Msg) {
		handle(dev, gate, msg)
	})
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Listener{conn: conn, sub: sub}, nil
}

func handle(dev *device.Device, gate *attach.Gate, msg *nats.Msg) {
	var wr wireRequest
	if err := json.Unmarshal(msg.Data, &wr); err != nil {
		devlog.Warnf("natssurface: malformed request on %s: %v", msg.Subject, err)
		return
	}

	if err := gate.Enter(); err != nil {
		reply(msg, wireResponse{ReturnVal: -1})
		return
	}
	defer gate.Leave()

	// The subject carries the request kind as its last token, e.g.
	// buddyd.buddy0.request.get.
	kind := kindFromSubject(msg.Subject)

	req := surface.Request{Kind: kind, Size: wr.Size, Ref: wr.Ref, Buf: wr.Buf}
	resp := surface.Dispatch(dev, req, func(k surface.Kind) {
		devlog.Warnf("natssurface: unknown request kind %v", k)
	})

	outcome := metrics.Success
	if resp.ReturnVal < 0 {
		outcome = metrics.Failure
	}
	metrics.ObserveRequest(kind.String(), outcome)

	reply(msg, wireResponse{ReturnVal: resp.ReturnVal, Data: resp.Data})
}

func reply(msg *nats.Msg, resp wireResponse) {
	if msg.Reply == "" {
		return
	}
	b, err := json.Marshal(resp)
	if err != nil {
		devlog.Errorf("natssurface: marshal reply: %v", err)
		return
	}
	if err := msg.Respond(b); err != nil {
		devlog.Errorf("natssurface: respond: %v", err)
	}
}

func kindFromSubject(subj string) surface.Kind {
	// Subjects are suffixed with the request kind so a single
	// subscription can dispatch all four: buddyd.<name>.request.<kind>.
	switch lastToken(subj) {
	case "free":
		return surface.Free
	case "write":
		return surface.Write
	case "read":
		return surface.Read
	default:
		return surface.Get
	}
}

func lastToken(subj string) string {
	for i := len(subj) - 1; i >= 0; i-- {
		if subj[i] == '.' {
			return subj[i+1:]
		}
	}
	return subj
}

// Close unsubscribes and closes the underlying connection.
func (l *Listener) Close() error {
	if l.sub != nil {
		_ = l.sub.Unsubscribe()
	}
	if l.conn != nil {
		l.conn.Close()
	}
	return nil
}
