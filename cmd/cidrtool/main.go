package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/nettrie/patricia"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	asJSON   bool
)

// rootCmd represents the root command
var rootCmd = &cobra.Command{
	Use:   "cidrtool",
	Short: "Query and dump CIDR tables backed by a patricia trie",
}

var lookupCmd = &cobra.Command{
	Use:   "lookup FILE ADDR...",
	Short: "Answer longest-prefix-match queries against a CIDR table file",
	Args:  cobra.MinimumNArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		trie := loadTable(args[0])
		for _, arg := range args[1:] {
			key, err := patricia.ParseCIDR(arg)
			if err != nil {
				log.WithError(err).Fatalf("bad query %q", arg)
			}
			node, ok := trie.SearchBest(key)
			if !ok {
				fmt.Printf("%s: no match\n", arg)
				continue
			}
			fmt.Printf("%s: %s %s\n", arg, node, node.Value())
		}
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump FILE",
	Short: "Print a CIDR table file as a tree diagram or JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		trie := loadTable(args[0])
		if asJSON {
			buf, err := trie.MarshalJSON()
			if err != nil {
				log.WithError(err).Fatal("marshaling table")
			}
			fmt.Println(string(buf))
			return
		}
		fmt.Print(trie.String())
	},
}

// loadTable reads one "cidr [value]" entry per line, '#' starts a
// comment, the value defaults to the CIDR itself.
func loadTable(path string) patricia.Trie[string] {
	file, err := os.Open(path)
	if err != nil {
		log.WithError(err).Fatalf("opening %s", path)
	}
	defer file.Close()

	trie, err := patricia.New[string](patricia.MaxBits)
	if err != nil {
		log.WithError(err).Fatal("creating table")
	}

	lineno := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineno++
		line, _, _ := strings.Cut(scanner.Text(), "#")
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		p, err := patricia.ParseCIDR(fields[0])
		if err != nil {
			log.WithError(err).Fatalf("%s:%d: bad prefix %q", path, lineno, fields[0])
		}
		val := p.String()
		if len(fields) > 1 {
			val = strings.Join(fields[1:], " ")
		}
		if _, err := trie.Insert(p, val); err != nil {
			log.WithError(err).Fatalf("%s:%d: inserting %s", path, lineno, p)
		}
	}
	if err := scanner.Err(); err != nil {
		log.WithError(err).Fatalf("reading %s", path)
	}

	log.Debugf("loaded %d prefixes from %s", trie.Size(), path)
	return trie
}

func initLogger() {
	ll, err := log.ParseLevel(logLevel)
	if err != nil {
		ll = log.ErrorLevel
	}
	log.SetLevel(ll)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, PadLevelText: true})
}

func initFlags() {
	cobra.OnInitialize(initLogger)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "error", "Log level: debug, info, warning, error")
	dumpCmd.Flags().BoolVar(&asJSON, "json", false, "Dump the table as JSON")
	rootCmd.AddCommand(lookupCmd, dumpCmd)
}

func main() {
	initFlags()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
