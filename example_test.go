package glidekv_test

import (
	"context"
	"fmt"

	"github.com/glidekv/glidekv"
	"github.com/glidekv/glidekv/internal/memstore"
)

func ExampleSession() {
	ctx := context.Background()
	session := glidekv.NewSession(memstore.New(), glidekv.Config{})

	session.GeoAdd(ctx, "stations",
		glidekv.GeoMember{Longitude: 13.361389, Latitude: 38.115556, Name: "Palermo"},
		glidekv.GeoMember{Longitude: 15.087269, Latitude: 37.502669, Name: "Catania"},
	)

	dist, _ := session.GeoDist(ctx, "stations", "Palermo", "Catania", "km")
	fmt.Printf("%.0f km\n", dist.Value)
	// Output: 166 km
}

func ExampleSession_batch() {
	ctx := context.Background()
	session := glidekv.NewSession(memstore.New(), glidekv.Config{})

	session.StartBatch()
	session.SAdd(ctx, "fleet", "alpha", "bravo")
	session.SCard(ctx, "fleet")
	results, _ := session.Exec(ctx)

	fmt.Println(results[0], results[1])
	// Output: 2 2
}

func ExampleSession_scanIterator() {
	ctx := context.Background()
	session := glidekv.NewSession(memstore.New(), glidekv.Config{})
	session.SAdd(ctx, "fleet", "alpha", "bravo", "charlie")

	it := session.SScanIterator("fleet", &glidekv.ScanOptions{Count: 2})
	for it.Next(ctx) {
		fmt.Println(it.Val())
	}
	// Output:
	// alpha
	// bravo
	// charlie
}
