// Package command implements the remote command table and the dispatcher
// that applies text commands arriving on the node's command topic.
//
// Wire format is plain text: "<NAME>[ <integer>]". Names match
// case-insensitively as a prefix of the message, in fixed table order; the
// first entry whose name matches and whose value scans wins. Because the
// match is by prefix, "TIME241" sets TIME24 to 1 and "SURVEYING" triggers
// SURVEY.
//
// Usage:
//
//	table := command.DefaultTable()
//	if err := table.LoadPersisted(store); err != nil {
//	    return err // fatal: store is inconsistent after seeding
//	}
//	d := command.NewDispatcher(table, store, logger)
//	d.OnAction(command.NameSurvey, startScan)
//	d.Dispatch(ctx, "UTCOFFSET -18000")
package command
