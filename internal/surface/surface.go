// Package surface implements the request-dispatch surface: a switch over
// the four request kinds (GET, FREE, WRITE, READ) of spec §4.E/§6, each a
// structured record whose status/result is written back into ReturnVal.
// Dispatch is carrier-agnostic — internal/httpsurface and
// internal/natssurface both transcode onto this same struct and function.
package surface

import "buddyd/pkg/device"

// Kind identifies one of the four request kinds.
type Kind int

const (
	Get Kind = iota
	Free
	Write
	Read
)

func (k Kind) String() string {
	switch k {
	case Get:
		return "GET"
	case Free:
		return "FREE"
	case Write:
		return "WRITE"
	case Read:
		return "READ"
	default:
		return "UNKNOWN"
	}
}

// Request is the structured payload shared by all four kinds. Only the
// fields relevant to Kind are read by Dispatch.
type Request struct {
	Kind Kind   `json:"kind"`
	Size int    `json:"size,omitempty"` // GET, READ
	Ref  int    `json:"ref,omitempty"`  // FREE, WRITE, READ
	Buf  []byte `json:"buf,omitempty"`  // WRITE: zero-terminated input
}

// Response carries the result of a Dispatch call. ReturnVal always holds
// the status per spec §9's fix to the source's inconsistent propagation:
// ref on GET, 0/-1 on FREE, bytes-written on WRITE, bytes-read on READ.
type Response struct {
	ReturnVal int    `json:"return_val"`
	Data      []byte `json:"data,omitempty"` // READ only
}

// UnknownKindLogger is called once per unknown request kind so a carrier
// can surface a diagnostic without Dispatch itself taking a logging
// dependency (the core packages stay side-effect-free; only this
// dispatcher, which is already ambient rather than core, logs at all).
type UnknownKindLogger func(kind Kind)

// Dispatch decodes req and invokes the appropriate Device method. Unknown
// kinds call log (if non-nil) and return ReturnVal 0 with no side effects,
// per spec §4.E/§7.
func Dispatch(d *device.Device, req Request, log UnknownKindLogger) Response {
	switch req.Kind {
	case Get:
		ref, err := d.Alloc(req.Size)
		if err != nil {
			return Response{ReturnVal: -1}
		}
		return Response{ReturnVal: ref}
	case Free:
		if err := d.Free(req.Ref); err != nil {
			return Response{ReturnVal: -1}
		}
		return Response{ReturnVal: 0}
	case Write:
		n, err := d.Write(req.Ref, req.Buf)
		if err != nil {
			return Response{ReturnVal: -1}
		}
		return Response{ReturnVal: n}
	case Read:
		data, err := d.Read(req.Ref, req.Size)
		if err != nil {
			return Response{ReturnVal: -1}
		}
		return Response{ReturnVal: len(data), Data: data}
	default:
		if log != nil {
			log(req.Kind)
		}
		return Response{ReturnVal: 0}
	}
}
