package proto_test

import (
	"testing"

	"github.com/sanguinariojoe/oclandgo/proto"
)

func TestInvalidForMatchesKind(t *testing.T) {
	cases := []struct {
		kind proto.Kind
		want proto.Status
	}{
		{proto.KindPlatform, proto.InvalidPlatform},
		{proto.KindDevice, proto.InvalidDevice},
		{proto.KindContext, proto.InvalidContext},
		{proto.KindQueue, proto.InvalidQueue},
		{proto.KindMem, proto.InvalidMemObject},
		{proto.KindSampler, proto.InvalidSampler},
		{proto.KindProgram, proto.InvalidProgram},
		{proto.KindKernel, proto.InvalidKernel},
		{proto.KindEvent, proto.InvalidEvent},
	}
	for _, c := range cases {
		if got := proto.InvalidFor(c.kind); got != c.want {
			t.Errorf("InvalidFor(%v) = %v, want %v", c.kind, got, c.want)
		}
	}
}

func TestStatusSatisfiesError(t *testing.T) {
	var err error = proto.InvalidContext
	if err.Error() == "" {
		t.Fatal("Status.Error() should not be empty")
	}
}

func TestSuccessIsZero(t *testing.T) {
	if proto.Success != 0 {
		t.Fatalf("proto.Success = %d, want 0", proto.Success)
	}
}
