package slack

import (
	"fmt"
	"strings"
)

type CommandType string

const (
	CmdRegister CommandType = "register"
	CmdApply    CommandType = "apply"
	CmdRevoke   CommandType = "revoke"
	CmdConfirm  CommandType = "confirm"
	CmdSelect   CommandType = "select"
	CmdReserve  CommandType = "reserve"
	CmdEvent    CommandType = "event"
	CmdRole     CommandType = "role"
	CmdPosition CommandType = "position"
	CmdBlocks   CommandType = "blocks"
	CmdOpen     CommandType = "open"
	CmdClose    CommandType = "close"
	CmdNotify   CommandType = "notify"
	CmdAnnounce CommandType = "announce"
	CmdStatus   CommandType = "status"
	CmdHelp     CommandType = "help"
)

type Command struct {
	Type CommandType
	Args []string
	Raw  string
}

func ParseCommand(text string) (*Command, error) {
	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) == 0 {
		return &Command{Type: CmdHelp}, nil
	}

	cmd := &Command{
		Raw: text,
	}

	switch parts[0] {
	case "register":
		cmd.Type = CmdRegister
	case "apply":
		cmd.Type = CmdApply
	case "revoke", "cancel":
		cmd.Type = CmdRevoke
	case "confirm":
		cmd.Type = CmdConfirm
	case "select":
		cmd.Type = CmdSelect
	case "reserve":
		cmd.Type = CmdReserve
	case "event":
		cmd.Type = CmdEvent
	case "role":
		cmd.Type = CmdRole
	case "position":
		cmd.Type = CmdPosition
	case "blocks":
		cmd.Type = CmdBlocks
	case "open":
		cmd.Type = CmdOpen
	case "close":
		cmd.Type = CmdClose
	case "notify":
		cmd.Type = CmdNotify
	case "announce":
		cmd.Type = CmdAnnounce
	case "status":
		cmd.Type = CmdStatus
	case "help":
		cmd.Type = CmdHelp
	default:
		return nil, fmt.Errorf("unknown command: %s", parts[0])
	}

	if len(parts) > 1 {
		cmd.Args = parts[1:]
	}

	return cmd, nil
}

func GetHelpText() string {
	return `*Controller staffing commands:*

*Applying:*
• ` + "`/staffing register <cid> <rating>`" + ` - Link your Slack account to your network CID
• ` + "`/staffing apply <event-id> <positions> <blocks>`" + ` - Apply for positions (comma separated ids)
• ` + "`/staffing revoke <event-id>`" + ` - Withdraw all your applications for an event
• ` + "`/staffing confirm <application-id>`" + ` - Confirm an assigned slot
• ` + "`/staffing status <event-id>`" + ` - Show open positions and your applications

*Staffing team:*
• ` + "`/staffing event <start> <end> <name>`" + ` - Create an event (times as 2006-01-02T15:04, UTC)
• ` + "`/staffing role <name> <min-rating>`" + ` - Register a reusable role template
• ` + "`/staffing position <event-id> <icao> <role>`" + ` - Add a position to an event
• ` + "`/staffing select <application-id>`" + ` - Assign a pending application to its slot
• ` + "`/staffing reserve <cid> <position-id> <block-id>`" + ` - Fill a slot from the applicant pool
• ` + "`/staffing blocks <event-id> <minutes>`" + ` - Regenerate time blocks
• ` + "`/staffing open <event-id>`" + ` / ` + "`close <event-id>`" + ` - Open or close bookings
• ` + "`/staffing notify <event-id> lock|reminder|rejection`" + ` - Queue notifications
• ` + "`/staffing announce <event-id>`" + ` - Post or refresh the staffing overview`
}
