package course

import (
	"errors"
	"testing"
	"time"

	nberrors "github.com/yungbote/neurobridge-coursegraph/internal/pkg/errors"
)

func TestUsageKeyRoundTrip(t *testing.T) {
	ck, err := ParseCourseKey("course-v1:Org+CS101+2026")
	if err != nil {
		t.Fatalf("ParseCourseKey: %v", err)
	}
	key := ck.MakeUsageKey("static_tab", "syllabus")
	want := "block-v1:Org+CS101+2026+type@static_tab+block@syllabus"
	if key.String() != want {
		t.Fatalf("want %s got %s", want, key)
	}
	back, err := ParseUsageKey(key.String())
	if err != nil || back != key {
		t.Fatalf("round trip: %+v %v", back, err)
	}
}

func TestParseKeysRejectMalformed(t *testing.T) {
	for _, raw := range []string{"", "Org/CS/1", "course-v1:Org+CS", "course-v1:Org++1"} {
		if _, err := ParseCourseKey(raw); !errors.Is(err, nberrors.ErrInvalidArgument) {
			t.Fatalf("ParseCourseKey(%q): want ErrInvalidArgument got %v", raw, err)
		}
	}
	for _, raw := range []string{"", "block-v1:O+C+R+video+x", "block-v1:O+C+R+type@+block@x", "i4x://O/C/video/x"} {
		if _, err := ParseUsageKey(raw); !errors.Is(err, nberrors.ErrInvalidArgument) {
			t.Fatalf("ParseUsageKey(%q): want ErrInvalidArgument got %v", raw, err)
		}
	}
}

func TestParseBlockType(t *testing.T) {
	cases := map[string]BlockType{
		"course":     BlockTypeCourse,
		"Vertical":   BlockTypeVertical,
		" video ":    BlockTypeVideo,
		"static_tab": BlockTypeOther,
		"discussion": BlockTypeOther,
	}
	for in, want := range cases {
		if got := ParseBlockType(in); got != want {
			t.Fatalf("ParseBlockType(%q): want %s got %s", in, want, got)
		}
	}
	if !BlockTypeSequential.IsContainer() || BlockTypeVideo.IsContainer() || BlockTypeOther.IsContainer() {
		t.Fatalf("IsContainer mismatch")
	}
}

func TestBlockFieldFollowsContent(t *testing.T) {
	start := 5 * time.Second
	video := Block{
		DisplayName: "Lecture",
		Content:     VideoContent{EdxVideoID: "v1", StartTime: &start},
	}
	if v, ok := video.Field(FieldStartTime); !ok || v.(time.Duration) != start {
		t.Fatalf("start_time: %v %v", v, ok)
	}
	if _, ok := video.Field(FieldEndTime); ok {
		t.Fatalf("unset end_time should be absent")
	}
	if _, ok := video.Field(FieldData); ok {
		t.Fatalf("video has no data field")
	}
	if _, ok := video.Field(FieldEditedOn); ok {
		t.Fatalf("unset edited_on should be absent")
	}

	html := Block{Content: HTMLContent{Data: "<p>hi</p>"}}
	if v, ok := html.Field(FieldData); !ok || v.(string) != "<p>hi</p>" {
		t.Fatalf("data: %v %v", v, ok)
	}
	if _, ok := html.Field(FieldEdxVideoID); ok {
		t.Fatalf("html has no edx_video_id")
	}

	other := Block{Key: UsageKey{BlockType: "static_tab"}}
	if other.Type() != BlockTypeOther {
		t.Fatalf("nil content should fall back to key category, got %s", other.Type())
	}
}

func TestMediaRecordUsable(t *testing.T) {
	if !(MediaRecord{Status: MediaStatusUploaded, DurationSeconds: 0}).Usable() {
		t.Fatalf("uploaded zero-length record should be usable")
	}
	if (MediaRecord{Status: "processing", DurationSeconds: 10}).Usable() {
		t.Fatalf("non-uploaded record should not be usable")
	}
}
