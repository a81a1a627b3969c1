// Package tasks provides a client for the Feishu task v2 API.
//
// It covers:
//   - Tasks: create, get, update, complete, delete and filtered listing
//   - Tasklists: create, get, update, delete, list and list their tasks
//   - Linking tasks to tasklists, including the best-effort attachment used
//     right after creation (AttachToTasklist)
//
// Inputs are validated locally before any request is sent; such failures
// wrap ErrInvalidInput. Remote failures surface as *feishu.APIError.
//
// # Example Usage
//
//	api, err := feishu.NewClient(feishu.Config{AppID: id, AppSecret: secret})
//	if err != nil {
//	    return err
//	}
//	client := tasks.NewClient(api, logger)
//
//	task, err := client.CreateTask(ctx, tasks.TaskInput{
//	    Summary: "Prepare release notes",
//	    DueTime: "2024-03-31T23:59:59+08:00",
//	})
package tasks
