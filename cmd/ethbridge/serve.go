// Copyright 2017 The go-probeum Authors
// This file is part of go-probeum.
//
// go-probeum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-probeum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-probeum. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/probeum/ethbridge/metrics"
	"github.com/probeum/ethbridge/wire"
	"gopkg.in/urfave/cli.v1"
)

var (
	httpAddrFlag = cli.StringFlag{
		Name:  "http",
		Usage: "Listen address for the read-only query endpoint",
	}

	serveCommand = cli.Command{
		Name:      "serve",
		Usage:     "Serve block_hash/last_block_number/dag_merkle_root over read-only HTTP",
		ArgsUsage: " ",
		Flags:     []cli.Flag{httpAddrFlag},
		Action:    runServe,
	}
)

// No RPC framework is wired in here: this bridge exposes four read-only
// getters, not a full node's JSON-RPC method surface, so plain
// encoding/json over net/http carries the load without an unused
// dependency.
func runServe(ctx *cli.Context) error {
	cfg, err := loadedConfig(ctx)
	if err != nil {
		return err
	}
	addr := cfg.Serve.Addr
	if ctx.IsSet(httpAddrFlag.Name) {
		addr = ctx.String(httpAddrFlag.Name)
	}

	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/last_block_number", func(w http.ResponseWriter, r *http.Request) {
		out, err := sess.Bridge.DispatchLastBlockNumber(nil)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		n, err := wire.NewReader(out).Uint64()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]uint64{"last_block_number": n})
	})
	mux.HandleFunc("/block_hash", func(w http.ResponseWriter, r *http.Request) {
		height, err := strconv.ParseUint(r.URL.Query().Get("height"), 10, 64)
		if err != nil {
			http.Error(w, "invalid height", http.StatusBadRequest)
			return
		}
		argW := wire.NewWriter()
		argW.PutUint64(height)
		out, err := sess.Bridge.DispatchBlockHash(argW.Bytes())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		argR := wire.NewReader(out)
		present, err := argR.Bool()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !present {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		hash, err := argR.Hash256()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"block_hash": hash.String()})
	})
	mux.HandleFunc("/dag_merkle_root", func(w http.ResponseWriter, r *http.Request) {
		epoch, err := strconv.ParseUint(r.URL.Query().Get("epoch"), 10, 64)
		if err != nil {
			http.Error(w, "invalid epoch", http.StatusBadRequest)
			return
		}
		argW := wire.NewWriter()
		argW.PutUint64(epoch)
		out, err := sess.Bridge.DispatchDagMerkleRoot(argW.Bytes())
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		root, err := wire.NewReader(out).Hash128()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"dag_merkle_root": root.String()})
	})

	if cfg.Metrics.Enabled {
		mux.Handle("/metrics", metrics.Handler())
	}

	sess.Logger.Info("serving bridge queries", "addr", addr)
	return http.ListenAndServe(addr, mux)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
