package resp

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestReadCommandArray(t *testing.T) {
	raw := "*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n"
	r := NewReader(bufio.NewReader(strings.NewReader(raw)), DefaultLimits())
	argv, err := r.ReadCommand()
	if err != nil {
		t.Fatal(err)
	}
	if len(argv) != 2 || argv[0] != "GET" || argv[1] != "foo" {
		t.Fatalf("unexpected argv: %#v", argv)
	}
}

func TestReadInlineCommand(t *testing.T) {
	raw := "PING\r\n"
	r := NewReader(bufio.NewReader(strings.NewReader(raw)), DefaultLimits())
	argv, err := r.ReadCommand()
	if err != nil {
		t.Fatal(err)
	}
	if len(argv) != 1 || argv[0] != "PING" {
		t.Fatalf("unexpected argv: %#v", argv)
	}
}

func TestWriteRoundTripResp2(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	w := NewWriter(bw)
	w.Proto = Proto2
	if err := w.WriteValue(Map(Bulk("a"), Integer(1))); err != nil {
		t.Fatal(err)
	}
	w.Flush()
	if buf.String() != "*2\r\n$1\r\na\r\n:1\r\n" {
		t.Fatalf("unexpected encoding: %q", buf.String())
	}
}

func TestWriteRoundTripResp3Map(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	w := NewWriter(bw)
	w.Proto = Proto3
	if err := w.WriteValue(Map(Bulk("a"), Integer(1))); err != nil {
		t.Fatal(err)
	}
	w.Flush()
	if buf.String() != "%1\r\n$1\r\na\r\n:1\r\n" {
		t.Fatalf("unexpected encoding: %q", buf.String())
	}
}

func TestMalformedFrameIsProtocolError(t *testing.T) {
	raw := "*abc\r\n"
	r := NewReader(bufio.NewReader(strings.NewReader(raw)), DefaultLimits())
	_, err := r.ReadCommand()
	if _, ok := err.(*ProtocolError); !ok {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
}

func TestBulkLenOverLimitIsProtocolError(t *testing.T) {
	raw := "*1\r\n$999999999999\r\n"
	r := NewReader(bufio.NewReader(strings.NewReader(raw)), DefaultLimits())
	_, err := r.ReadCommand()
	if _, ok := err.(*ProtocolError); !ok {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
}
