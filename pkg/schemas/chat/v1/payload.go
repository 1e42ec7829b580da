package chat

import (
	"encoding/json"
	"net/url"
	"strings"
)

const (
	clipPrefix  = "clip::"
	boostPrefix = "boost::"
)

// CallHosts lists the hosts whose links render as call invitations.
var CallHosts = []string{
	"jitsi.sphinx.chat",
	"meet.jit.si",
}

type PodcastClip struct {
	Title  string `json:"title"`
	PubKey string `json:"pubkey"`
	URL    string `json:"url"`
	FeedID string `json:"feedID"`
	ItemID string `json:"itemID"`
	TS     int64  `json:"ts"`
}

type FeedBoost struct {
	FeedID string `json:"feedID"`
	ItemID string `json:"itemID"`
	TS     int64  `json:"ts"`
	Amount Sat    `json:"amount"`
}

type CallLink struct {
	URL            string
	StartAudioOnly bool
}

func (m *Message) content() string {
	if m.ContentDecrypted == nil {
		return ""
	}
	return *m.ContentDecrypted
}

// PodcastClip decodes a "clip::{json}" body. Malformed payloads yield nil.
func (m *Message) PodcastClip() *PodcastClip {
	raw, ok := strings.CutPrefix(m.content(), clipPrefix)
	if !ok {
		return nil
	}
	var c PodcastClip
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil
	}
	return &c
}

// FeedBoost decodes a "boost::{json}" body. Malformed payloads yield nil.
func (m *Message) FeedBoost() *FeedBoost {
	raw, ok := strings.CutPrefix(m.content(), boostPrefix)
	if !ok {
		return nil
	}
	var b FeedBoost
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return nil
	}
	return &b
}

// CallLink recognizes a body that is a single call URL on one of CallHosts.
func (m *Message) CallLink() *CallLink {
	text := strings.TrimSpace(m.content())
	if text == "" || strings.ContainsAny(text, " \n\t") {
		return nil
	}
	u, err := url.Parse(text)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") {
		return nil
	}
	known := false
	for _, h := range CallHosts {
		if strings.EqualFold(u.Hostname(), h) {
			known = true
			break
		}
	}
	if !known || strings.Trim(u.Path, "/") == "" {
		return nil
	}
	return &CallLink{
		URL:            text,
		StartAudioOnly: strings.Contains(u.Fragment, "startAudioOnly=true"),
	}
}
