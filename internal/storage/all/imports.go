// Package all links every storage backend into the binary. Importing it for
// side effects registers the backends with the storage factory:
//
//	import _ "github.com/LegalAILegal/analiz-klientiv-sub001/internal/storage/all"
package all

import (
	_ "github.com/LegalAILegal/analiz-klientiv-sub001/internal/storage/mssql"
	_ "github.com/LegalAILegal/analiz-klientiv-sub001/internal/storage/mysql"
	_ "github.com/LegalAILegal/analiz-klientiv-sub001/internal/storage/postgres"
	_ "github.com/LegalAILegal/analiz-klientiv-sub001/internal/storage/sqlite"
)
