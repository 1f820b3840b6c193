// Package agent maps free-text chat instructions to task commands. Parsing
// is a pure function over the instruction text: no state is carried between
// turns, consistent with the statelessness of the rest of the backend.
package agent

import (
	"regexp"
	"strconv"
	"strings"
)

// Action identifies which task operation a command drives.
type Action int

const (
	// ActionHelp is the fallback for anything the parser does not
	// recognize. It never mutates the store.
	ActionHelp Action = iota
	ActionAdd
	ActionList
	ActionComplete
	ActionDelete
	ActionUpdate
)

// Command is the single operation extracted from one instruction. Index is
// the 1-based position of the target task in the caller's current task list
// (newest first), the way the list is shown to the user.
type Command struct {
	Action      Action
	Title       string
	Description string
	Index       int
}

var (
	listRe     = regexp.MustCompile(`(?i)^(?:list|show|view)(?:\s+(?:all|my))?(?:\s+tasks?)?$`)
	completeRe = regexp.MustCompile(`(?i)^(?:complete|finish|done(?:\s+with)?|check(?:\s+off)?)\s+(?:task\s+)?#?(\d+)$`)
	deleteRe   = regexp.MustCompile(`(?i)^(?:delete|remove|drop)\s+(?:task\s+)?#?(\d+)$`)
	updateRe   = regexp.MustCompile(`(?i)^(?:update|rename|change)\s+(?:task\s+)?#?(\d+)\s+(?:to|as)\s+(.+)$`)
	addRe      = regexp.MustCompile(`(?i)^(?:add|create|new)\s+(?:a\s+|an\s+)?(?:task\s*:?\s*)?(.+)$`)
)

// Parse classifies one instruction into exactly one command.
func Parse(instruction string) Command {
	text := strings.TrimSpace(instruction)
	if text == "" {
		return Command{Action: ActionHelp}
	}

	if listRe.MatchString(text) {
		return Command{Action: ActionList}
	}
	if m := completeRe.FindStringSubmatch(text); m != nil {
		return indexCommand(ActionComplete, m[1])
	}
	if m := deleteRe.FindStringSubmatch(text); m != nil {
		return indexCommand(ActionDelete, m[1])
	}
	if m := updateRe.FindStringSubmatch(text); m != nil {
		cmd := indexCommand(ActionUpdate, m[1])
		if cmd.Action == ActionUpdate {
			cmd.Title = strings.TrimSpace(m[2])
		}
		return cmd
	}
	if m := addRe.FindStringSubmatch(text); m != nil {
		title, description := splitTitle(m[1])
		if title == "" {
			return Command{Action: ActionHelp}
		}
		return Command{Action: ActionAdd, Title: title, Description: description}
	}

	return Command{Action: ActionHelp}
}

func indexCommand(action Action, digits string) Command {
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return Command{Action: ActionHelp}
	}
	return Command{Action: action, Index: n}
}

// splitTitle separates "buy milk: the 2% kind" into a title and an optional
// description.
func splitTitle(rest string) (string, string) {
	title, description, found := strings.Cut(rest, ":")
	if !found {
		return strings.TrimSpace(rest), ""
	}
	return strings.TrimSpace(title), strings.TrimSpace(description)
}

// Help is the reply shown when no command matches.
const Help = `I can manage your task list. Try:
- "add buy milk" (or "add buy milk: the 2% kind" for a description)
- "list tasks"
- "complete task 2"
- "update task 2 to call the dentist"
- "delete task 3"`
