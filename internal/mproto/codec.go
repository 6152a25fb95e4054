package mproto

import (
	"fmt"
)

// Status is the outcome carried by a response line.
type Status int

const (
	Ack Status = iota
	Err
)

// Response is a (status, optional payload) pair. The only non-empty ACK
// payload in this protocol is the decimal port number sent in reply to the
// data handshake.
type Response struct {
	Status  Status
	Payload string
}

// EncodeCommand renders (kind, arg) as a control line: code, then arg
// verbatim if it is non-empty, then a single trailing newline. Panics if kind
// has no wire code; callers must only encode kinds that cross the wire.
func EncodeCommand(kind Kind, arg string) string {
	code, ok := CodeFromKind(kind)
	if !ok {
		panic(fmt.Sprintf("mproto: kind %v has no wire code", kind))
	}

	if arg == "" {
		return string(code) + "\n"
	}
	return string(code) + arg + "\n"
}

// EncodeAck renders an ACK response line. payload is empty except in reply
// to the data handshake, where it carries the ephemeral port as decimal
// digits.
func EncodeAck(payload string) string {
	return "A" + payload + "\n"
}

// EncodeErr renders an ERR response line carrying a free-form diagnostic.
func EncodeErr(message string) string {
	return "E" + message + "\n"
}

// DecodeCommand parses a control line read by the server: the first byte is
// the wire code, the remainder (with the trailing newline already stripped
// by the caller) is the argument. An unrecognized code yields
// (Command{Kind: Invalid}, false); the server reports this as an error
// response without terminating the session.
func DecodeCommand(line string) (Command, bool) {
	if line == "" {
		return Command{Kind: Invalid}, false
	}

	kind, ok := KindFromCode(line[0])
	if !ok {
		return Command{Kind: Invalid}, false
	}

	return Command{Kind: kind, Arg: line[1:]}, true
}

// DecodeResponse parses a response line read by the client: 'A' or 'E'
// followed by the payload/message text.
func DecodeResponse(line string) (Response, error) {
	if line == "" {
		return Response{}, fmt.Errorf("empty response line")
	}

	switch line[0] {
	case 'A':
		return Response{Status: Ack, Payload: line[1:]}, nil
	case 'E':
		return Response{Status: Err, Payload: line[1:]}, nil
	default:
		return Response{}, fmt.Errorf("unrecognized response code %q", line[0])
	}
}
