// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

// A Classifier decides whether the response held by a message is an
// error. It is only called after the response has been populated, and
// must be a pure function of the response status and headers.
//
// Implementations of Classifier must be safe for concurrent use by
// multiple goroutines.
type Classifier interface {
	IsError(m *Message) bool
}

// The ClassifierFunc type is an adapter to allow the use of ordinary
// functions as response classifiers.
type ClassifierFunc func(m *Message) bool

// IsError calls f(m).
func (f ClassifierFunc) IsError(m *Message) bool {
	return f(m)
}

// DefaultClassifier classifies every response with a status code of
// 400 or above as an error.
var DefaultClassifier ClassifierFunc = func(m *Message) bool {
	return m.StatusCode() >= 400
}

// ExpectStatus constructs a classifier which classifies a response as
// an error unless its status code is one of the codes listed in ss.
func ExpectStatus(ss ...int) ClassifierFunc {
	ss2 := make([]int, len(ss))
	copy(ss2, ss)
	return func(m *Message) bool {
		for _, s := range ss2 {
			if m.StatusCode() == s {
				return false
			}
		}
		return true
	}
}
