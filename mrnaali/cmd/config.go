// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/vreuter/mrnaali/mrnaali/alidb"
)

// DBConfig is the database setting, which can be read from a TOML file:
//
//	db = "~/data/mrnaAli.db"
//	table = "mrnaAli"
type DBConfig struct {
	DB    string `toml:"db"`
	Table string `toml:"table"`
}

func readDBConfig(file string) (*DBConfig, error) {
	file, err := homedir.Expand(file)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var cfg DBConfig
	if err = toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config file %s", file)
	}
	return &cfg, nil
}

// getDBConfig merges the config file and flags. Flags take precedence.
func getDBConfig(cmd *cobra.Command) *DBConfig {
	cfg := &DBConfig{Table: alidb.DefaultTable}

	if file := getFlagString(cmd, "config"); file != "" {
		_cfg, err := readDBConfig(file)
		checkError(err)
		if _cfg.DB != "" {
			cfg.DB = _cfg.DB
		}
		if _cfg.Table != "" {
			cfg.Table = _cfg.Table
		}
	}

	if cmd.Flags().Changed("db") || cfg.DB == "" {
		cfg.DB = getFlagString(cmd, "db")
	}
	if cmd.Flags().Changed("table") {
		cfg.Table = getFlagString(cmd, "table")
	}

	if cfg.DB == "" {
		checkError(fmt.Errorf("flag -d/--db or a config file with 'db' needed"))
	}
	var err error
	cfg.DB, err = homedir.Expand(cfg.DB)
	checkError(err)

	return cfg
}

func openDB(cfg *DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", cfg.DB)
	if err != nil {
		return nil, errors.Wrapf(err, "open database %s", cfg.DB)
	}
	return db, nil
}

func addDBFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("db", "d", "",
		formatFlagUsage(`SQLite database file.`))

	cmd.Flags().StringP("table", "t", alidb.DefaultTable,
		formatFlagUsage(`Table name.`))

	cmd.Flags().StringP("config", "c", "",
		formatFlagUsage(`TOML config file with 'db' and 'table'. Flags given in the command line take precedence.`))
}
