package migrations

import "embed"

// FS embeds the SQL migrations creating the key-value table shared by the
// ledger and the custody bank. golang-migrate reads them through the iofs driver.
//
//go:embed *.sql
var FS embed.FS

// Version is the schema version the service migrates to on startup.
const Version = 1
