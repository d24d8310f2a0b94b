// Copyright 2023 Google Inc. All Rights Reserved.
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

package logger

import (
	"bytes"
	"log/slog"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const (
	textTraceString   = "^time=\"[-0-9: ]{19}\" severity=TRACE message=\"TestLogs: www.traceExample.com\""
	textDebugString   = "^time=\"[-0-9: ]{19}\" severity=DEBUG message=\"TestLogs: www.debugExample.com\""
	textInfoString    = "^time=\"[-0-9: ]{19}\" severity=INFO message=\"TestLogs: www.infoExample.com\""
	textWarningString = "^time=\"[-0-9: ]{19}\" severity=WARNING message=\"TestLogs: www.warningExample.com\""
	textErrorString   = "^time=\"[-0-9: ]{19}\" severity=ERROR message=\"TestLogs: www.errorExample.com\""

	jsonTraceString   = "^\\{\"timestamp\":\"[-0-9:TZ.]+\",\"severity\":\"TRACE\",\"msg\":\"TestLogs: www.traceExample.com\"\\}"
	jsonDebugString   = "^\\{\"timestamp\":\"[-0-9:TZ.]+\",\"severity\":\"DEBUG\",\"msg\":\"TestLogs: www.debugExample.com\"\\}"
	jsonInfoString    = "^\\{\"timestamp\":\"[-0-9:TZ.]+\",\"severity\":\"INFO\",\"msg\":\"TestLogs: www.infoExample.com\"\\}"
	jsonWarningString = "^\\{\"timestamp\":\"[-0-9:TZ.]+\",\"severity\":\"WARNING\",\"msg\":\"TestLogs: www.warningExample.com\"\\}"
	jsonErrorString   = "^\\{\"timestamp\":\"[-0-9:TZ.]+\",\"severity\":\"ERROR\",\"msg\":\"TestLogs: www.errorExample.com\"\\}"
)

type LoggerTest struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTest))
}

func redirectLogsToGivenBuffer(buf *bytes.Buffer, format string) {
	defaultLoggerFactory = &loggerFactory{writer: buf, format: format}
	defaultLogger = slog.New(defaultLoggerFactory.createHandler(buf, programLevel))
}

func fetchLogOutputForSpecifiedSeverityLevel(severity string, functions []func()) []string {
	var buf bytes.Buffer
	redirectLogsToGivenBuffer(&buf, defaultLoggerFactory.format)
	setLoggingLevel(severity)

	var output []string
	for _, f := range functions {
		f()
		output = append(output, buf.String())
		buf.Reset()
	}
	return output
}

func getTestLoggingFunctions() []func() {
	return []func(){
		func() { Tracef("TestLogs: www.traceExample.com") },
		func() { Debugf("TestLogs: www.debugExample.com") },
		func() { Infof("TestLogs: www.infoExample.com") },
		func() { Warnf("TestLogs: www.warningExample.com") },
		func() { Errorf("TestLogs: www.errorExample.com") },
	}
}

func validateOutput(t *testing.T, expected []string, output []string) {
	for i := range output {
		if expected[i] == "" {
			assert.Equal(t, expected[i], output[i])
		} else {
			expectedRegexp := regexp.MustCompile(expected[i])
			assert.True(t, expectedRegexp.MatchString(output[i]), "output %q did not match %q", output[i], expected[i])
		}
	}
}

func validateLogOutputAtSpecifiedFormatAndSeverity(t *testing.T, format string, severity string, expectedOutput []string) {
	defaultLoggerFactory.format = format
	output := fetchLogOutputForSpecifiedSeverityLevel(severity, getTestLoggingFunctions())
	validateOutput(t, expectedOutput, output)
}

func (t *LoggerTest) TestTextFormatLogs_LogLevelOFF() {
	expected := []string{"", "", "", "", ""}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "text", "OFF", expected)
}

func (t *LoggerTest) TestTextFormatLogs_LogLevelERROR() {
	expected := []string{"", "", "", "", textErrorString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "text", "ERROR", expected)
}

func (t *LoggerTest) TestTextFormatLogs_LogLevelWARNING() {
	expected := []string{"", "", "", textWarningString, textErrorString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "text", "WARNING", expected)
}

func (t *LoggerTest) TestTextFormatLogs_LogLevelINFO() {
	expected := []string{"", "", textInfoString, textWarningString, textErrorString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "text", "INFO", expected)
}

func (t *LoggerTest) TestTextFormatLogs_LogLevelDEBUG() {
	expected := []string{"", textDebugString, textInfoString, textWarningString, textErrorString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "text", "DEBUG", expected)
}

func (t *LoggerTest) TestTextFormatLogs_LogLevelTRACE() {
	expected := []string{textTraceString, textDebugString, textInfoString, textWarningString, textErrorString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "text", "TRACE", expected)
}

func (t *LoggerTest) TestJSONFormatLogs_LogLevelINFO() {
	expected := []string{"", "", jsonInfoString, jsonWarningString, jsonErrorString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "json", "INFO", expected)
}

func (t *LoggerTest) TestJSONFormatLogs_LogLevelTRACE() {
	expected := []string{jsonTraceString, jsonDebugString, jsonInfoString, jsonWarningString, jsonErrorString}
	validateLogOutputAtSpecifiedFormatAndSeverity(t.T(), "json", "TRACE", expected)
}

func (t *LoggerTest) TestSetLoggingLevel() {
	testData := []struct {
		severity      string
		expectedLevel slog.Level
	}{
		{"TRACE", LevelTrace},
		{"DEBUG", LevelDebug},
		{"INFO", LevelInfo},
		{"WARNING", LevelWarn},
		{"ERROR", LevelError},
		{"OFF", LevelOff},
	}

	for _, test := range testData {
		setLoggingLevel(test.severity)
		assert.Equal(t.T(), test.expectedLevel, programLevel.Level())
	}
}

func (t *LoggerTest) TestForComponentTagsComponentName() {
	var buf bytes.Buffer
	redirectLogsToGivenBuffer(&buf, "json")
	setLoggingLevel("INFO")

	l := ForComponent("store")
	l.Infof("dialed cluster")

	assert.Contains(t.T(), buf.String(), `"component":"store"`)
	assert.Contains(t.T(), buf.String(), `"msg":"dialed cluster"`)
}
