package service

import "testing"

func TestMapPaymentStatus(t *testing.T) {
	cases := []struct {
		status string
		want   StatusAction
	}{
		{"approved", ActionAccept},
		{"rejected", ActionReject},
		{"cancelled", ActionReject},
		{"pending", ActionDefer},
		{"in_process", ActionDefer},
		{"in_mediation", ActionDefer},
		{"authorized", ActionDefer},
		{"refunded", ActionIgnore},
		{"charged_back", ActionIgnore},
		{"", ActionIgnore},
		{"  APPROVED  ", ActionAccept},
	}
	for _, tc := range cases {
		if got := MapPaymentStatus(tc.status); got != tc.want {
			t.Fatalf("MapPaymentStatus(%q) = %s, want %s", tc.status, got, tc.want)
		}
	}
}
