// Package wire implements the broker's text-frame grammar: parsing and
// rendering the hello, request, reply, and broadcast frames. Every
// function here is pure string manipulation — no I/O, no registry
// access — so the grammar can be exercised without a running broker.
package wire

import (
	"errors"
	"strconv"
	"strings"
)

// Errors returned while parsing hello frames. These are distinct from the
// diagnostic strings sent back over the wire (internal/broker renders the
// wire text); keeping them separate lets callers distinguish failure kinds
// without string-matching.
var (
	ErrServiceNameUnspecified = errors.New("service name unspecified")
	ErrServiceTypeUnspecified = errors.New("service type unspecified")
	ErrInvalidServiceType     = errors.New("invalid service type")
)

// ServiceKind is the registered type of a service, parsed from a hello
// frame's trailing "request" or "broadcast" token.
type ServiceKind int

const (
	// ServiceKindRequest answers individual client requests.
	ServiceKindRequest ServiceKind = iota
	// ServiceKindBroadcast publishes a stream consumed by many clients.
	ServiceKindBroadcast
)

func (k ServiceKind) String() string {
	if k == ServiceKindBroadcast {
		return "broadcast"
	}
	return "request"
}

// ServiceHello is a parsed "+<name>::<type>" frame, the leading '+' already
// stripped by the caller.
type ServiceHello struct {
	Name string
	Kind ServiceKind
}

// ParseServiceHello parses the body of a service registration frame.
// body is everything after the leading '+'.
func ParseServiceHello(body string) (ServiceHello, error) {
	name, rest, hasType := SplitOnce(body, "::")
	if !hasType {
		if name == "" {
			return ServiceHello{}, ErrServiceNameUnspecified
		}
		return ServiceHello{}, ErrServiceTypeUnspecified
	}
	if name == "" {
		return ServiceHello{}, ErrServiceNameUnspecified
	}
	switch rest {
	case "request":
		return ServiceHello{Name: name, Kind: ServiceKindRequest}, nil
	case "broadcast":
		return ServiceHello{Name: name, Kind: ServiceKindBroadcast}, nil
	case "":
		return ServiceHello{}, ErrServiceTypeUnspecified
	default:
		return ServiceHello{}, ErrInvalidServiceType
	}
}

// ClientRequest is a parsed "&<name>[#<tag>]::<data>" frame sent by a
// client, the leading '&' already stripped.
type ClientRequest struct {
	ServiceName string
	Tag         string
	Data        string
}

// ParseClientRequest parses the body of a client request frame.
func ParseClientRequest(body string) (ClientRequest, bool) {
	selector, data, ok := SplitOnce(body, "::")
	if !ok {
		selector, data = body, ""
	}
	name, tag := SplitTag(selector)
	return ClientRequest{ServiceName: name, Tag: tag, Data: data}, ok
}

// ServiceAddress addresses a single client by its (serial, id) pair, with
// an optional correlation tag. It is the shape shared by the
// broker→service forwarded-request frame and the service→broker reply
// frame.
type ServiceAddress struct {
	Serial string
	ID     uint32
	Tag    string
	Data   string
}

// FormatServiceAddress renders "<serial>@<id>[#<tag>]::<data>".
func FormatServiceAddress(serial string, id uint32, tag, data string) string {
	var b strings.Builder
	b.WriteString(serial)
	b.WriteByte('@')
	b.WriteString(strconv.FormatUint(uint64(id), 10))
	b.WriteString(TagSuffix(tag))
	b.WriteString("::")
	b.WriteString(data)
	return b.String()
}

// ParseServiceAddress parses "<serial>@<id>[#<tag>]::<data>". ok is false
// if the address portion cannot be split into a serial/id pair or the id
// is not a valid uint32 — a protocol-level parse failure, as opposed to a
// well-formed address that simply names a client no longer registered.
func ParseServiceAddress(frame string) (ServiceAddress, bool) {
	addr, data, hasData := SplitOnce(frame, "::")
	if !hasData {
		return ServiceAddress{}, false
	}
	serial, idPart, ok := SplitOnce(addr, "@")
	if !ok {
		return ServiceAddress{}, false
	}
	idStr, tag := SplitTag(idPart)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return ServiceAddress{}, false
	}
	return ServiceAddress{Serial: serial, ID: uint32(id), Tag: tag, Data: data}, true
}

// FormatClientReply renders "<request>[#<tag>]@<service>::<payload>", the
// frame a client receives in answer to an earlier request.
func FormatClientReply(request, tag, service, payload string) string {
	var b strings.Builder
	b.WriteString(request)
	b.WriteString(TagSuffix(tag))
	b.WriteByte('@')
	b.WriteString(service)
	b.WriteString("::")
	b.WriteString(payload)
	return b.String()
}

// FormatBroadcastDelivery renders "<service>::<payload>".
func FormatBroadcastDelivery(service, payload string) string {
	return service + "::" + payload
}

// SplitTag splits a selector of the form "<name>#<tag>" into its name and
// tag parts. Absence of '#' yields an empty tag; an explicit empty tag
// ("name#") and an entirely absent tag are treated as equivalent, so
// both forms collapse to tag == "".
func SplitTag(s string) (name, tag string) {
	name, tag, _ = SplitOnce(s, "#")
	return name, tag
}

// TagSuffix renders a tag back onto the wire: "" when empty, else "#<tag>".
func TagSuffix(tag string) string {
	if tag == "" {
		return ""
	}
	return "#" + tag
}

// SplitOnce splits s on the first occurrence of sep. ok is false if sep
// does not occur, in which case before == s and after == "".
func SplitOnce(s, sep string) (before, after string, ok bool) {
	i := strings.Index(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
