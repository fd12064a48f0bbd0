// Binary server starts the account core HTTP API.
package main

import (
	"net/http"

	_ "github.com/lib/pq"

	"github.com/bankapp/account-core/cmd/httpserver"
	"github.com/bankapp/account-core/internal/middleware"
	"github.com/bankapp/account-core/pkg/configpkg"
	"github.com/bankapp/account-core/pkg/dbpkg"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	logger := middleware.GetLogger(config)

	conn, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to db")
	}

	server, err := httpserver.New(conn, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().Msgf("listening on %s", config.ServerAddress)

	if err := http.ListenAndServe(config.ServerAddress, server); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
