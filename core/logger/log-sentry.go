// Licensed to NASA JPL under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. NASA JPL licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package logger

import (
	"fmt"

	"github.com/getsentry/sentry-go"
)

// SentryLogger - Passes everything to the wrapped logger, and also sends errors to Sentry.
// sentry.Init must have been called already, otherwise the capture is a no-op
type SentryLogger struct {
	Next ILogger
}

func (l *SentryLogger) Printf(level LogLevel, format string, a ...interface{}) {
	l.Next.Printf(level, format, a...)
	if level == LogError {
		sentry.CaptureMessage(fmt.Sprintf(format, a...))
	}
}
func (l *SentryLogger) Debugf(format string, a ...interface{}) {
	l.Printf(LogDebug, format, a...)
}
func (l *SentryLogger) Infof(format string, a ...interface{}) {
	l.Printf(LogInfo, format, a...)
}
func (l *SentryLogger) Errorf(format string, a ...interface{}) {
	l.Printf(LogError, format, a...)
}
