// Package notifier announces finished games.
//
// TelegramNotifier posts one message per newly Final game to a chat through
// the Telegram Bot API. DryRunNotifier prints the same messages instead.
package notifier
