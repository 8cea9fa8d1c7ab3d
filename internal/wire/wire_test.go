package wire

import "testing"

func TestParseServiceHello(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		want    ServiceHello
		wantErr error
	}{
		{"request kind", "sysinfo::request", ServiceHello{"sysinfo", ServiceKindRequest}, nil},
		{"broadcast kind", "eventbridge::broadcast", ServiceHello{"eventbridge", ServiceKindBroadcast}, nil},
		{"no separator at all", "sysinfo", ServiceHello{}, ErrServiceTypeUnspecified},
		{"empty name no separator", "", ServiceHello{}, ErrServiceNameUnspecified},
		{"empty name with separator", "::request", ServiceHello{}, ErrServiceNameUnspecified},
		{"empty type", "sysinfo::", ServiceHello{}, ErrServiceTypeUnspecified},
		{"invalid type", "sysinfo::subscribe", ServiceHello{}, ErrInvalidServiceType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseServiceHello(tc.body)
			if err != tc.wantErr {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if err == nil && got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestParseClientRequest(t *testing.T) {
	got, ok := ParseClientRequest("sysinfo::hello")
	if !ok || got.ServiceName != "sysinfo" || got.Tag != "" || got.Data != "hello" {
		t.Fatalf("got %+v ok=%v", got, ok)
	}

	got, ok = ParseClientRequest("sysinfo#t1::hello")
	if !ok || got.ServiceName != "sysinfo" || got.Tag != "t1" || got.Data != "hello" {
		t.Fatalf("got %+v ok=%v", got, ok)
	}

	got, ok = ParseClientRequest("sysinfo")
	if ok {
		t.Fatalf("expected ok=false for missing ::, got %+v", got)
	}
	if got.ServiceName != "sysinfo" {
		t.Fatalf("expected service name preserved for diagnosing, got %+v", got)
	}
}

func TestServiceAddressRoundTrip(t *testing.T) {
	frame := FormatServiceAddress("abc123", 7, "t9", "payload data")
	want := "abc123@7#t9::payload data"
	if frame != want {
		t.Fatalf("got %q, want %q", frame, want)
	}

	addr, ok := ParseServiceAddress(frame)
	if !ok {
		t.Fatalf("expected ok")
	}
	if addr.Serial != "abc123" || addr.ID != 7 || addr.Tag != "t9" || addr.Data != "payload data" {
		t.Fatalf("got %+v", addr)
	}
}

func TestServiceAddressNoTag(t *testing.T) {
	frame := FormatServiceAddress("abc123", 7, "", "payload")
	if frame != "abc123@7::payload" {
		t.Fatalf("got %q", frame)
	}
	addr, ok := ParseServiceAddress(frame)
	if !ok || addr.Tag != "" {
		t.Fatalf("got %+v ok=%v", addr, ok)
	}
}

func TestParseServiceAddressMalformed(t *testing.T) {
	cases := []string{
		"noColonSeparator",
		"missingAt::data",
		"abc@notanumber::data",
	}
	for _, c := range cases {
		if _, ok := ParseServiceAddress(c); ok {
			t.Fatalf("expected parse failure for %q", c)
		}
	}
}

func TestFormatClientReply(t *testing.T) {
	got := FormatClientReply("&sysinfo::hello", "t1", "sysinfo", "reply data")
	want := "&sysinfo::hello#t1@sysinfo::reply data"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	got = FormatClientReply("&sysinfo::hello", "", "sysinfo", "reply data")
	want = "&sysinfo::hello@sysinfo::reply data"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatBroadcastDelivery(t *testing.T) {
	got := FormatBroadcastDelivery("eventbridge", "tick")
	if got != "eventbridge::tick" {
		t.Fatalf("got %q", got)
	}
}

func TestSplitTagEquivalence(t *testing.T) {
	n1, t1 := SplitTag("name")
	n2, t2 := SplitTag("name#")
	if n1 != n2 || t1 != t2 {
		t.Fatalf("expected equivalence, got (%q,%q) vs (%q,%q)", n1, t1, n2, t2)
	}
	if t1 != "" {
		t.Fatalf("expected empty tag, got %q", t1)
	}
}

func TestSplitOnce(t *testing.T) {
	before, after, ok := SplitOnce("a::b::c", "::")
	if !ok || before != "a" || after != "b::c" {
		t.Fatalf("got %q %q %v", before, after, ok)
	}
	before, after, ok = SplitOnce("abc", "::")
	if ok || before != "abc" || after != "" {
		t.Fatalf("got %q %q %v", before, after, ok)
	}
}
