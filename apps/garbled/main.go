//
// main.go
//
// Copyright (c) 2019-2024 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"

	"github.com/GabrieleCastellani1/garbled-circuit-with-dynamic-dimension/circuit"
	"github.com/GabrieleCastellani1/garbled-circuit-with-dynamic-dimension/env"
	"github.com/GabrieleCastellani1/garbled-circuit-with-dynamic-dimension/p2p"
	"github.com/GabrieleCastellani1/garbled-circuit-with-dynamic-dimension/protocol"
	"github.com/markkurossi/tabulate"
	"github.com/markkurossi/text/superscript"
)

const (
	exitSuccess = 0
	exitVerify  = 1
	exitTransp  = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	garbler := flag.Bool("g", false, "run as Garbler (listens); default Evaluator (dials)")
	addr := flag.String("a", ":8080", "address to listen on (-g) or dial")
	out := flag.String("o", "", "output file for the verification result; default stdout")
	verbose := flag.Bool("v", false, "verbose progress and timing report")
	dumpStats := flag.Bool("dump-stats", false, "print a circuit statistics table (Garbler only)")
	otBypass := flag.Bool("ot-bypass", false, "bypass oblivious transfer (testing only)")
	primeBits := flag.Int("prime-bits", env.DefaultPrimeBits, "OT group modulus size in bits")
	labelBytes := flag.Int("label-bytes", env.DefaultLabelBytes, "wire label width in bytes")
	otLog := flag.String("ot-log", "", "write a human-readable OT transcript to this file")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] input-file...\n", os.Args[0])
		return exitTransp
	}
	if *labelBytes != env.DefaultLabelBytes {
		fmt.Fprintf(os.Stderr, "label-bytes: only %d is supported\n", env.DefaultLabelBytes)
		return exitTransp
	}

	values, err := readInputs(flag.Args())
	if err != nil {
		log.Printf("input: %v", err)
		return exitTransp
	}

	cfg := &env.Config{
		OTBypass:  *otBypass,
		PrimeBits: *primeBits,
	}

	var result []bool
	if *garbler {
		result, err = runGarbler(*addr, values, cfg, *verbose, *dumpStats, *otLog)
	} else {
		result, err = runEvaluator(*addr, values, cfg, *verbose, *otLog)
	}
	if err != nil {
		log.Printf("session failed: %v", err)
		writeVerification(*out, false)
		if isTransportErr(err) {
			return exitTransp
		}
		return exitVerify
	}

	value := circuit.UnpackBits(result)
	if *verbose {
		fmt.Printf("result: %d\n", value)
	}
	writeVerification(*out, true)
	return exitSuccess
}

func isTransportErr(err error) bool {
	return errors.Is(err, protocol.ErrTransport)
}

// readInputs reads one or more whitespace-separated non-negative
// integer lists, one per file, and concatenates them into a single
// vector (spec.md §6 "Input files").
func readInputs(files []string) ([]uint64, error) {
	var arg circuit.IOArg
	var values []uint64
	for _, name := range files {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}
		for _, tok := range strings.Fields(string(data)) {
			v, err := arg.Parse(tok)
			if err != nil {
				return nil, fmt.Errorf("%w: %q in %s: %v", protocol.ErrInput, tok, name, err)
			}
			if v.Sign() < 0 {
				return nil, fmt.Errorf("%w: negative value %q in %s", protocol.ErrInput, tok, name)
			}
			values = append(values, v.Uint64())
		}
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no input values given", protocol.ErrInput)
	}
	return values, nil
}

// writeVerification writes "1" on success or "0" on failure to path,
// or to stdout when path is empty (spec.md §6 "Output files").
func writeVerification(path string, ok bool) {
	var line string
	if ok {
		line = "1\n"
	} else {
		line = "0\n"
	}
	if path == "" {
		fmt.Print(line)
		return
	}
	if err := os.WriteFile(path, []byte(line), 0644); err != nil {
		log.Printf("writing %s: %v", path, err)
	}
}

// bitLen returns the minimum bit width needed to hold every value in
// vals, at least 1.
func bitLen(vals []uint64) int {
	var maxV uint64
	for _, v := range vals {
		if v > maxV {
			maxV = v
		}
	}
	k := 0
	for maxV > 0 {
		k++
		maxV >>= 1
	}
	if k == 0 {
		k = 1
	}
	return k
}

func runGarbler(addr string, values []uint64, cfg *env.Config, verbose, dumpStats bool, otLog string) ([]bool, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", protocol.ErrTransport, err)
	}
	defer ln.Close()
	if verbose {
		fmt.Printf("garbler%s: listening on %s\n", superscript.Itoa(1), addr)
	}

	nc, err := ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", protocol.ErrTransport, err)
	}
	defer nc.Close()
	if verbose {
		fmt.Printf("garbler%s: connection from %s\n", superscript.Itoa(1), nc.RemoteAddr())
	}

	conn := p2p.NewConn(nc)
	g := protocol.NewGarbler(conn, cfg)

	if otLog != "" {
		f, err := os.Create(otLog)
		if err != nil {
			return nil, fmt.Errorf("ot-log: %v", err)
		}
		defer f.Close()
		g.SetTranscript(f)
	}

	n, k, err := g.Negotiate(len(values), bitLen(values))
	if err != nil {
		return nil, err
	}
	padded, err := protocol.PadAndPermute(cfg.GetRandom(), values, n)
	if err != nil {
		return nil, err
	}
	if err := g.SendCircuit(); err != nil {
		return nil, err
	}
	if dumpStats {
		dumpCircuitStats(addr, g)
	}
	if err := g.SendInputs(circuit.PackInts(padded, k)); err != nil {
		return nil, err
	}
	if err := g.RunOTLoop(); err != nil {
		return nil, err
	}
	result, err := g.AwaitResult()
	if err != nil {
		return nil, err
	}
	if verbose {
		g.Timing().Print()
		fmt.Printf("garbler%s: sent %d, received %d bytes\n",
			superscript.Itoa(1), conn.Stats.Sent, conn.Stats.Recvd)
	}
	return result, nil
}

func runEvaluator(addr string, values []uint64, cfg *env.Config, verbose bool, otLog string) ([]bool, error) {
	nc, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", protocol.ErrTransport, err)
	}
	defer nc.Close()
	if verbose {
		fmt.Printf("evaluator%s: connected to %s\n", superscript.Itoa(2), addr)
	}

	conn := p2p.NewConn(nc)
	e := protocol.NewEvaluator(conn, cfg)

	if otLog != "" {
		f, err := os.Create(otLog)
		if err != nil {
			return nil, fmt.Errorf("ot-log: %v", err)
		}
		defer f.Close()
		e.SetTranscript(f)
	}

	n, k, err := e.Negotiate(len(values), bitLen(values))
	if err != nil {
		return nil, err
	}
	padded, err := protocol.PadAndPermute(cfg.GetRandom(), values, n)
	if err != nil {
		return nil, err
	}
	if err := e.ReceiveCircuit(); err != nil {
		return nil, err
	}
	if err := e.ReceiveGarblerInputs(); err != nil {
		return nil, err
	}
	if err := e.RunOTLoop(circuit.PackInts(padded, k)); err != nil {
		return nil, err
	}
	result, err := e.EvaluateAndSendResult()
	if err != nil {
		return nil, err
	}
	if verbose {
		e.Timing().Print()
		fmt.Printf("evaluator%s: sent %d, received %d bytes\n",
			superscript.Itoa(2), conn.Stats.Sent, conn.Stats.Recvd)
	}
	return result, nil
}

func dumpCircuitStats(label string, g *protocol.Garbler) {
	c := g.Circuit()
	if c == nil {
		return
	}
	tab := tabulate.New(tabulate.Github)
	tab.Header("Session")
	circuit.StatsHeaders(tab)

	row := tab.Row()
	row.Column(label)
	c.TabulateRow(row)

	tab.Print(os.Stdout)
}
