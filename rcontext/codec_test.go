package rcontext

import (
	"encoding/base64"
	"testing"

	"github.com/ourritual/sdk-go/keys"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := New().SetTopic("t1").SetCustom("a", "1").SetCustom("b", "2")

	first := Encode(c)
	if first == "" {
		t.Fatal("encode of populated context is empty")
	}
	second := Encode(Decode(first))
	if first != second {
		t.Errorf("round trip not stable:\n first=%q\nsecond=%q", first, second)
	}

	decoded := Decode(first)
	if topic, _ := decoded.Topic(); topic != "t1" {
		t.Errorf("topic: got %q, want %q", topic, "t1")
	}
	custom := decoded.Custom()
	if custom["a"] != "1" || custom["b"] != "2" {
		t.Errorf("custom: got %v", custom)
	}
}

func TestEncodeEmpty(t *testing.T) {
	if got := Encode(New()); got != "" {
		t.Errorf("encode of empty context: got %q, want empty", got)
	}
}

func TestEncodeStableOrder(t *testing.T) {
	c := New().SetTopic("t").SetCustom("z", "1").SetCustom("a", "2")
	first := Encode(c)
	for i := 0; i < 10; i++ {
		if got := Encode(c); got != first {
			t.Fatalf("encode order unstable: %q vs %q", got, first)
		}
	}
}

func TestDecodeEmpty(t *testing.T) {
	for _, header := range []string{"", "   ", "\n"} {
		c := Decode(header)
		if _, ok := c.Topic(); ok {
			t.Errorf("decode(%q): topic should be unset", header)
		}
		if c.Custom() != nil {
			t.Errorf("decode(%q): custom should be nil", header)
		}
	}
}

func TestDecodeInvalidBase64(t *testing.T) {
	c := Decode("not-valid-base64!!!")
	if len(c.ToMap()) != 0 {
		t.Errorf("invalid base64 should yield empty context, got %v", c.ToMap())
	}
}

func TestDecodeToleratesMissingPadding(t *testing.T) {
	header := Encode(New().SetTopic("pad"))
	trimmed := header
	for len(trimmed) > 0 && trimmed[len(trimmed)-1] == '=' {
		trimmed = trimmed[:len(trimmed)-1]
	}
	if topic, _ := Decode(trimmed).Topic(); topic != "pad" {
		t.Errorf("unpadded decode: got topic %q, want %q", topic, "pad")
	}
}

func TestDecodePartialParse(t *testing.T) {
	text := keys.RootPrefix + "/good: \"kept\"\nthis line matches nothing\n" +
		keys.TopicPath + ": \"t\""
	header := base64.URLEncoding.EncodeToString([]byte(text))

	c := Decode(header)
	if topic, _ := c.Topic(); topic != "t" {
		t.Errorf("topic: got %q, want %q", topic, "t")
	}
	custom := c.Custom()
	if custom["good"] != "kept" {
		t.Errorf("well-formed line not decoded: %v", custom)
	}
	if len(custom) != 1 {
		t.Errorf("malformed line should be dropped: %v", custom)
	}
}

func TestDecodeSkipsReservedTopicKey(t *testing.T) {
	text := keys.RootPrefix + "/topic: \"not-a-custom\""
	header := base64.URLEncoding.EncodeToString([]byte(text))
	if custom := Decode(header).Custom(); custom != nil {
		t.Errorf("reserved topic key decoded as custom: %v", custom)
	}
}

func TestDecodeValuesAlwaysStrings(t *testing.T) {
	c := New().SetCustom("n", 123).SetCustom("f", 45.67)
	decoded := Decode(Encode(c))
	custom := decoded.Custom()
	if custom["n"] != "123" {
		t.Errorf("numeric value: got %#v, want string %q", custom["n"], "123")
	}
	if custom["f"] != "45.67" {
		t.Errorf("float value: got %#v, want string %q", custom["f"], "45.67")
	}
}
