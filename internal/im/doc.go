// Package im sends Feishu direct messages, plain text or interactive cards,
// to users identified by open_id.
//
// Cards are assembled with NewCard and its builder methods:
//
//	card := im.NewCard("Tasks due soon", im.TemplateOrange).
//	    Markdown("**Prepare slides**\nDue: 2024-03-01").
//	    Button("Open task", task.URL)
//	_, err := client.SendCard(ctx, openID, card)
//
// Delivery failures are returned as *MessageError wrapping the underlying
// *feishu.APIError when the server rejected the message.
package im
