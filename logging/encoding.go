// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package logging

import (
	"mime"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

var textMediaTypes = map[string]bool{
	"application/json":                  true,
	"application/xml":                   true,
	"application/javascript":            true,
	"application/x-www-form-urlencoded": true,
}

// TextEncoding classifies a Content-Type header value. If the content
// is text, the encoding used to decode it is returned with true.
//
// An explicit charset parameter decides the encoding; an unrecognized
// charset makes the content binary. Without a charset, text/* types,
// JSON, XML, JavaScript, URL-encoded forms, and the +json and +xml
// structured syntax suffixes are decoded as UTF-8.
func TextEncoding(contentType string) (encoding.Encoding, bool) {
	if contentType == "" {
		return nil, false
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, false
	}
	if charset, ok := params["charset"]; ok {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, false
		}
		return enc, true
	}
	if strings.HasPrefix(mediaType, "text/") ||
		textMediaTypes[mediaType] ||
		strings.HasSuffix(mediaType, "+json") ||
		strings.HasSuffix(mediaType, "+xml") {
		return unicode.UTF8, true
	}
	return nil, false
}

func decode(enc encoding.Encoding, b []byte) (string, bool) {
	if enc == nil {
		return "", false
	}
	text, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", false
	}
	return string(text), true
}
