package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/juniorISO69960/schema.autobot.tf/internal/query"
	"github.com/juniorISO69960/schema.autobot.tf/internal/schema"
)

func main() {
	file := flag.String("file", "", "read the schema document from this file instead of fetching it")
	url := flag.String("url", "https://schema.autobot.tf/schema", "schema document URL")
	name := flag.String("name", "", "resolve an item name to its sku")
	sku := flag.String("sku", "", "render the name of an item sku")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	start := time.Now()
	var (
		snap *schema.Snapshot
		err  error
	)
	if *file != "" {
		var data []byte
		data, err = os.ReadFile(*file)
		if err != nil {
			fmt.Println("ERROR reading schema file:", err)
			os.Exit(1)
		}
		snap, err = schema.Parse(data, *file, time.Now(), logger)
	} else {
		snap, err = schema.NewFetcher(*url, 2*time.Minute, 256<<20, logger).FetchSnapshot(context.Background())
	}
	if err != nil {
		fmt.Println("ERROR loading schema:", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded schema %s from %s in %v\n", snap.Version, snap.Source, time.Since(start).Round(time.Millisecond))
	fmt.Printf("Document size: %d bytes, %d schema items\n", len(snap.Document()), snap.ItemCount())

	for _, c := range []schema.Category{
		schema.CategoryQualities, schema.CategoryEffects, schema.CategoryPaintkits,
		schema.CategoryPaints, schema.CategoryStrangeParts, schema.CategoryCraftWeapons,
	} {
		v, _ := snap.Derived(c)
		fmt.Printf("  %-14s %d entries\n", c, length(v))
	}

	store := schema.NewStore()
	store.Install(snap)
	facade := query.New(store)

	if *name != "" {
		s, err := facade.SKUFromName(*name)
		if err != nil {
			fmt.Printf("%q: ERROR %v\n", *name, err)
		} else {
			fmt.Printf("%q -> %s\n", *name, s)
		}
	}
	if *sku != "" {
		n, err := facade.NameFromSKU(*sku, false, false)
		if err != nil {
			fmt.Printf("%s: ERROR %v\n", *sku, err)
		} else {
			fmt.Printf("%s -> %q\n", *sku, n)
		}
	}
}

func length(v any) int {
	switch t := v.(type) {
	case map[string]int:
		return len(t)
	case map[int]string:
		return len(t)
	case []string:
		return len(t)
	}
	return -1
}
