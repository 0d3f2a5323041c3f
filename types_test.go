package coloby

import "testing"

func TestDecodeNotificationVariants(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		kind NotificationKind
	}{
		{"message", `{"type":"message","message":"hi"}`, KindMessage},
		{"file upload", `{"type":"file_upload","file_name":"plan.pdf","file_size":42}`, KindFileUpload},
		{"branch activity", `{"type":"branch_activity","file_name":"plan.pdf","activity":"switched"}`, KindBranchActivity},
		{"task", `{"type":"task","title":"ship it"}`, KindTask},
	}

	for _, tc := range cases {
		n, err := DecodeNotification([]byte(tc.raw))
		if err != nil {
			t.Fatalf("%s: decode failed: %v", tc.name, err)
		}
		if n.Kind != tc.kind {
			t.Fatalf("%s: expected kind %s got %s", tc.name, tc.kind, n.Kind)
		}
		body, err := n.Payload()
		if err != nil {
			t.Fatalf("%s: payload failed: %v", tc.name, err)
		}
		if len(body) == 0 {
			t.Fatalf("%s: empty payload", tc.name)
		}
	}
}

func TestDecodeNotificationRejects(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"unknown type", `{"type":"bogus"}`},
		{"missing type", `{"message":"hi"}`},
		{"message without text", `{"type":"message"}`},
		{"file upload without name", `{"type":"file_upload"}`},
		{"branch activity without name", `{"type":"branch_activity","activity":"switched"}`},
		{"task without title", `{"type":"task","description":"x"}`},
		{"malformed json", `{"type":`},
	}

	for _, tc := range cases {
		if _, err := DecodeNotification([]byte(tc.raw)); err == nil {
			t.Fatalf("%s: expected an error", tc.name)
		}
	}
}
