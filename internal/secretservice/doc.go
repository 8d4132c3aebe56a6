// Package secretservice stores secrets in the freedesktop Secret Service
// through the secret-tool(1) command.
//
// Commands:
//   - store:  secret-tool store --label SecretStore:<service> service <service> account <key>
//   - lookup: secret-tool lookup service <service> account <key>
//   - clear:  secret-tool clear service <service> account <key>
//
// Exit status 0 is success, 1 from lookup means the secret does not exist
// and 2 means the backing collection is missing. Anything else is reported
// as a CommandError carrying the exit status and stderr text.
package secretservice
