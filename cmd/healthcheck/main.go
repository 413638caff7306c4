// main.go
//
// Book outline service: books with nested index trees, JSON and XML import
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of livros.
// livros is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// livros is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with livros.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/localnerve/livros/internal/config"
	"github.com/localnerve/livros/internal/database"
	"github.com/localnerve/livros/internal/logging"
	"github.com/localnerve/livros/internal/services"
	"github.com/localnerve/livros/internal/utils"
	"github.com/rs/zerolog/log"
)

func main() {
	var skipServer bool
	flag.BoolVar(&skipServer, "db-only", false, "skip the API port check")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(logger.WithContext(context.Background()), 5*time.Second)
	defer cancel()

	result := services.HealthCheck(ctx, cfg, db)

	if !skipServer {
		if err := utils.PingServer(cfg.Port); err != nil {
			result.Status = "unhealthy"
			result.Details["server_error"] = err.Error()
			if result.ErrorMessage == "" {
				result.ErrorMessage = fmt.Sprintf("Server ping failed: %v", err)
			} else {
				result.ErrorMessage += fmt.Sprintf("; Server ping failed: %v", err)
			}
		} else {
			result.Details["server_port"] = cfg.Port
		}
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to marshal health check result")
	}
	fmt.Println(string(output))

	if !result.Healthy() {
		os.Exit(1)
	}
}
