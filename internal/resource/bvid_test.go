package resource_test

import (
	"testing"

	"bget/internal/resource"
)

func TestBVIDKnownVectors(t *testing.T) {
	vectors := map[int64]string{
		170001:     "BV17x411w7KC",
		2:          "BV1xx411c7mD",
		1054803170: "BV1mH4y1u7UA",
	}
	for aid, bvid := range vectors {
		got, err := resource.EncodeBVID(aid)
		if err != nil {
			t.Fatalf("EncodeBVID(%d): %v", aid, err)
		}
		if got != bvid {
			t.Errorf("EncodeBVID(%d) = %s, want %s", aid, got, bvid)
		}
		back, err := resource.DecodeBVID(bvid)
		if err != nil {
			t.Fatalf("DecodeBVID(%s): %v", bvid, err)
		}
		if back != aid {
			t.Errorf("DecodeBVID(%s) = %d, want %d", bvid, back, aid)
		}
	}
}

func TestBVIDRoundTrip(t *testing.T) {
	for _, aid := range []int64{1, 99, 170001, 80433022, 1<<32 + 5, 1<<51 - 1} {
		bvid, err := resource.EncodeBVID(aid)
		if err != nil {
			t.Fatalf("EncodeBVID(%d): %v", aid, err)
		}
		if len(bvid) != 12 || bvid[:3] != "BV1" {
			t.Fatalf("unexpected shape %q", bvid)
		}
		back, err := resource.DecodeBVID(bvid)
		if err != nil {
			t.Fatalf("DecodeBVID(%s): %v", bvid, err)
		}
		if back != aid {
			t.Fatalf("round trip %d -> %s -> %d", aid, bvid, back)
		}
	}
}

func TestBVIDRejectsInvalidInput(t *testing.T) {
	for _, bad := range []string{"", "BV17x411w7K", "BV17x411w7K0", "XX17x411w7KC", "BV17x411w7KCC"} {
		if _, err := resource.DecodeBVID(bad); err == nil {
			t.Errorf("DecodeBVID(%q) should fail", bad)
		}
	}
	for _, aid := range []int64{0, -1, 1 << 51} {
		if _, err := resource.EncodeBVID(aid); err == nil {
			t.Errorf("EncodeBVID(%d) should fail", aid)
		}
	}
}
