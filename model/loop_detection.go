package model

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

const loopWarning = "Loop detected: the last %d tool calls follow a repeating pattern. Try a different approach."

// toolCallSignature is the tool name plus a short hash of its arguments.
// encoding/json sorts map keys, so equal arguments hash equally.
func toolCallSignature(call ToolCall) string {
	args, err := json.Marshal(call.Arguments)
	if err != nil {
		args = []byte(fmt.Sprint(call.Arguments))
	}
	h := sha256.Sum256(args)
	return fmt.Sprintf("%s:%x", call.Name, h[:8])
}

// DetectLoop reports whether the last windowSize signatures repeat with a
// period of 1, 2 or 3.
func DetectLoop(sigs []string, windowSize int) bool {
	if windowSize <= 1 || len(sigs) < windowSize {
		return false
	}
	window := sigs[len(sigs)-windowSize:]

	for patternLen := 1; patternLen <= 3; patternLen++ {
		if windowSize%patternLen != 0 || patternLen == windowSize {
			continue
		}
		pattern := window[:patternLen]
		allMatch := true
		for i := patternLen; i < windowSize && allMatch; i += patternLen {
			for j := 0; j < patternLen; j++ {
				if window[i+j] != pattern[j] {
					allMatch = false
					break
				}
			}
		}
		if allMatch {
			return true
		}
	}

	return false
}
