// Package deeplink encodes show attribution into a compact token that fits
// a Telegram start parameter, and tells tokens apart from plain slugs.
//
// Wire format, newest first:
//   - "t1." + base64(JSON TrackingParams) — current, self-describing
//   - base64(JSON TrackingParams)         — previous, no envelope tag
//   - base64("city|project|show_datetime") — legacy fixed-arity record
//
// Decode never fails loudly: anything unparseable is treated as "not a
// tracked link" and the caller falls back to slug lookup.
package deeplink

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"teatrlead/entity"
)

// envelopePrefix tags current-format tokens so dispatch does not depend on
// length heuristics for links minted after the tag was introduced.
const envelopePrefix = "t1."

// tokenLengthThreshold separates legacy tokens from slugs: slugs are short
// human-chosen strings, encoded payloads are not.
const tokenLengthThreshold = 50

// jsonBase64Prefix is base64 of `{"` — every legacy JSON token starts with it.
const jsonBase64Prefix = "eyJ"

// Encode serializes the attribute set into a URL-safe opaque token. Telegram
// start parameters only allow [A-Za-z0-9_-], hence the unpadded URL alphabet.
func Encode(p entity.TrackingParams) string {
	data, _ := json.Marshal(p)
	return envelopePrefix + base64.RawURLEncoding.EncodeToString(data)
}

// Decode reverses Encode, accepting both the current envelope format and the
// two older ones. Returns nil on any parse failure.
func Decode(token string) *entity.TrackingParams {
	raw := strings.TrimPrefix(token, envelopePrefix)
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		// Older links were minted with the standard padded alphabet.
		decoded, err = base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil
		}
	}

	var p entity.TrackingParams
	if err = json.Unmarshal(decoded, &p); err == nil {
		return &p
	}

	// Legacy format: three pipe-delimited fields, no attribution.
	parts := strings.Split(string(decoded), "|")
	if len(parts) == 3 {
		return &entity.TrackingParams{
			City:         parts[0],
			Project:      parts[1],
			ShowDatetime: parts[2],
		}
	}
	return nil
}

// IsToken classifies a start parameter as an encoded token rather than a
// slug. Current tokens carry the envelope tag; older links are recognized by
// the legacy heuristic (length or base64-JSON prefix).
func IsToken(param string) bool {
	if strings.HasPrefix(param, envelopePrefix) {
		return true
	}
	return len(param) > tokenLengthThreshold || strings.HasPrefix(param, jsonBase64Prefix)
}

// BotLink renders the shareable deep link for a start parameter, which may
// be either a slug or an encoded token.
func BotLink(botUsername, startParam string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", botUsername, startParam)
}
