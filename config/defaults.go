package config

import (
	"strings"

	"github.com/BioSina/MAPle/logger"
)

// Defaults returns the built-in value of every configuration key, keyed by
// the name used in the configuration file.
func Defaults() map[string]string {
	return map[string]string{
		"name": "MAPle",

		"FASTQC":     "fastqc",
		"gzip":       "gzip",
		"perl":       "perl",
		"prinseq":    "prinseq-lite.pl",
		"megan":      "MEGAN",
		"diamond":    "diamond",
		"malt":       "malt-run",
		"megantools": "tools",
		"metaxa":     "metaxa2",

		"diamondindex": "diamond.dmnd",
		"taxonomy":     "acc2tax.abin",
		"eggnog":       "acc2eggnog.abin",
		"interpro":     "acc2interpro.abin",
		"seed":         "acc2seed.abin",
		"hostDB":       "host",
		"maltbase":     "malt",

		"trimwindow":    "0",
		"trimqual":      "0",
		"minlength":     "0",
		"lefttrim":      "0",
		"trimSwapMates": "True",

		"maxeval":    "0.0",
		"minsupp":    "0.0",
		"malteval":   "0.0",
		"maltsupp":   "0.0",
		"threads":    "30",
		"threads16S": "20",

		"rawabsolute":  "10000",
		"raw2trimloss": "0.6",

		"pairID1": ".1.",
		"pairID2": ".2.",

		"basic":      "True",
		"filterHost": "True",
		"16S":        "True",
		"keepraw":    "True",
		"compressed": "True",

		"stageTimeout":        "0s",
		"gracePeriod":         "10s",
		"retries":             "1",
		"sampleWorkers":       "1",
		"subpipelineParallel": "1",

		"otlpEndpoint": "",
		"otlpInsecure": "True",

		"logLevel":   "info",
		"logFormat":  "console",
		"logOutput":  "stderr",
		"logNoColor": "False",
	}
}

var knownKeys = func() map[string]struct{} {
	keys := make(map[string]struct{})
	for k := range Defaults() {
		keys[strings.ToLower(k)] = struct{}{}
	}
	return keys
}()

// Default returns the configuration obtained from an empty file, ignoring
// the environment.
func Default() Config {
	cfg, err := fromValues(nil, logger.Nop(), false)
	if err != nil {
		panic(err)
	}
	return cfg
}
