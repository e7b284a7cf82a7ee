// Copyright 2023 StreamNative, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"log/slog"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/streamnative/ddmap/common/logging"
)

func TestCall_LogLevel(t *testing.T) {
	tests := []struct {
		name          string
		level         string
		expectedErr   error
		expectedLevel slog.Level
	}{
		{"debug", "debug", nil, slog.LevelDebug},
		{"info", "info", nil, slog.LevelInfo},
		{"warn", "warn", nil, slog.LevelWarn},
		{"error", "error", nil, slog.LevelError},
		{"upper-case", "DEBUG", nil, slog.LevelDebug},
		{"junk", "junk", LogLevelError("junk"), slog.LevelInfo},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			logLevelStr = ""
			logging.LogLevel = logging.DefaultLogLevel
			rootCmd.SetArgs([]string{"-l", test.level})
			rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
				assert.Equal(t, test.expectedLevel, logging.LogLevel)
				return nil
			}
			err := rootCmd.Execute()
			assert.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestLogLevelError(t *testing.T) {
	assert.EqualError(t, LogLevelError("junk"), "unknown log level (junk)")
}
