package encoder

import (
	"fmt"
	"strings"
	"testing"
)

func TestPackagerArgs(t *testing.T) {
	set := NewStreamSet(DefaultPreset(), "/tmp/work")
	p := NewPackager()

	args := p.args(set)

	for i, stream := range set.Streams {
		want := fmt.Sprintf("stream=%s,in=%s,format=mp4,out=%s,playlist_name=%s",
			stream.Type, stream.Input, stream.Output, stream.Playlist)
		if args[i] != want {
			t.Errorf("Descriptor %d: expected %q, got %q", i, want, args[i])
		}
	}

	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "--mpd_output /tmp/work/manifest.mpd") {
		t.Errorf("Expected MPD output flag, got %q", joined)
	}
	if !strings.Contains(joined, "--hls_master_playlist_output /tmp/work/manifest.m3u8") {
		t.Errorf("Expected HLS master output flag, got %q", joined)
	}
	if strings.Contains(joined, "--enable_raw_key_encryption") {
		t.Errorf("Expected no encryption flags without options, got %q", joined)
	}
}

func TestPackagerArgsEncryption(t *testing.T) {
	set := NewStreamSet(DefaultPreset(), "/tmp/work")
	p := NewPackager()
	p.Encryption = &EncryptionOptions{
		KeyID:     "00112233445566778899aabbccddeeff",
		Key:       "ffeeddccbbaa99887766554433221100",
		HLSKeyURI: "skd://license.local/key",
	}

	joined := strings.Join(p.args(set), " ")

	checks := []string{
		"--enable_raw_key_encryption",
		"--protection_scheme cbcs",
		"--keys label=cenc:key_id=00112233445566778899aabbccddeeff:key=ffeeddccbbaa99887766554433221100",
		"--clear_lead 0",
		"--hls_key_uri skd://license.local/key",
	}
	for _, want := range checks {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected %q in args, got %q", want, joined)
		}
	}
}

func TestPackagerArgsEncryptionWithoutKeyURI(t *testing.T) {
	set := NewStreamSet(DefaultPreset(), "/tmp/work")
	p := NewPackager()
	p.Encryption = &EncryptionOptions{KeyID: "kid", Key: "key"}

	joined := strings.Join(p.args(set), " ")
	if !strings.Contains(joined, "--enable_raw_key_encryption") {
		t.Errorf("Expected encryption flags, got %q", joined)
	}
	if strings.Contains(joined, "--hls_key_uri") {
		t.Errorf("Expected no key URI flag when unset, got %q", joined)
	}
}
