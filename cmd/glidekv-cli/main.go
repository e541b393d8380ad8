package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/glidekv/glidekv"
	"github.com/glidekv/glidekv/internal/memstore"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
)

func main() {
	root := &cobra.Command{
		Use:   "glidekv-cli",
		Short: "Interactive shell for the glidekv command surface",
		Long:  "Explore the geo and set command families against an in-memory store.",
	}
	root.AddCommand(replCommand(), demoCommand())
	if err := root.Execute(); err != nil {
		red.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func replCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Run an interactive shell against an in-memory store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session := glidekv.NewSession(memstore.New(), glidekv.Config{})
			fmt.Println("glidekv shell (in-memory store)")
			fmt.Println("Commands: sadd, srem, smembers, sismember, sinter, scan,")
			fmt.Println("          geoadd, geodist, geopos, geosearch, stats, quit")
			fmt.Println()

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				parts := strings.Fields(line)
				if strings.EqualFold(parts[0], "quit") {
					return nil
				}
				runLine(cmd.Context(), session, parts)
			}
		},
	}
}

func runLine(ctx context.Context, s *glidekv.Session, parts []string) {
	switch strings.ToLower(parts[0]) {
	case "sadd":
		if len(parts) < 3 {
			usage("sadd <key> <member>...")
			return
		}
		report(s.SAdd(ctx, parts[1], parts[2:]...))
	case "srem":
		if len(parts) < 3 {
			usage("srem <key> <member>...")
			return
		}
		report(s.SRem(ctx, parts[1], parts[2:]...))
	case "smembers":
		if len(parts) != 2 {
			usage("smembers <key>")
			return
		}
		report(s.SMembers(ctx, parts[1]))
	case "sismember":
		if len(parts) != 3 {
			usage("sismember <key> <member>")
			return
		}
		report(s.SIsMember(ctx, parts[1], parts[2]))
	case "sinter":
		if len(parts) < 3 {
			usage("sinter <key> <key>...")
			return
		}
		report(s.SInter(ctx, parts[1:]...))
	case "scan":
		keys, _, err := s.Scan(ctx, "", &glidekv.ScanOptions{Match: patternArg(parts)})
		report(keys, err)
	case "geoadd":
		if len(parts) < 5 || (len(parts)-2)%3 != 0 {
			usage("geoadd <key> (<lon> <lat> <member>)...")
			return
		}
		members, err := parseGeoMembers(parts[2:])
		if err != nil {
			red.Println(err)
			return
		}
		report(s.GeoAdd(ctx, parts[1], members...))
	case "geodist":
		if len(parts) < 4 || len(parts) > 5 {
			usage("geodist <key> <member1> <member2> [unit]")
			return
		}
		unit := ""
		if len(parts) == 5 {
			unit = parts[4]
		}
		res, err := s.GeoDist(ctx, parts[1], parts[2], parts[3], unit)
		if err != nil {
			red.Println(err)
			return
		}
		if !res.Found {
			yellow.Println("(no such member)")
			return
		}
		green.Printf("%.4f\n", res.Value)
	case "geopos":
		if len(parts) < 3 {
			usage("geopos <key> <member>...")
			return
		}
		coords, err := s.GeoPos(ctx, parts[1], parts[2:]...)
		if err != nil {
			red.Println(err)
			return
		}
		for i, c := range coords {
			if c == nil {
				yellow.Printf("%s: (missing)\n", parts[2+i])
				continue
			}
			green.Printf("%s: %f,%f\n", parts[2+i], c.Longitude, c.Latitude)
		}
	case "geosearch":
		if len(parts) != 6 {
			usage("geosearch <key> <lon> <lat> <radius> <unit>")
			return
		}
		lon, errLon := strconv.ParseFloat(parts[2], 64)
		lat, errLat := strconv.ParseFloat(parts[3], 64)
		radius, errR := strconv.ParseFloat(parts[4], 64)
		if errLon != nil || errLat != nil || errR != nil {
			red.Println("lon, lat and radius must be numbers")
			return
		}
		locs, err := s.GeoSearch(ctx, parts[1], &glidekv.GeoSearchQuery{
			FromLonLat: &glidekv.GeoCoord{Longitude: lon, Latitude: lat},
			ByRadius:   radius,
			Unit:       parts[5],
			Sort:       "asc",
		}, glidekv.GeoSearchOptions{WithDist: true})
		if err != nil {
			red.Println(err)
			return
		}
		for _, l := range locs {
			green.Printf("%s (%.4f)\n", l.Name, l.Dist)
		}
	case "stats":
		st := s.Stats()
		fmt.Printf("executed=%d buffered=%d failed=%d recovered=%d\n",
			st.Executed, st.Buffered, st.Failed, st.Recovered)
	default:
		red.Printf("unknown command %q\n", parts[0])
	}
}

func demoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run a scripted tour of the command surface",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			session := glidekv.NewSession(memstore.New(), glidekv.Config{})

			if _, err := session.GeoAdd(ctx, "stations",
				glidekv.GeoMember{Longitude: 13.361389, Latitude: 38.115556, Name: "Palermo"},
				glidekv.GeoMember{Longitude: 15.087269, Latitude: 37.502669, Name: "Catania"},
			); err != nil {
				return err
			}
			dist, err := session.GeoDist(ctx, "stations", "Palermo", "Catania", "km")
			if err != nil {
				return err
			}
			green.Printf("Palermo-Catania: %.4f km\n", dist.Value)

			if err := session.StartBatch(); err != nil {
				return err
			}
			session.SAdd(ctx, "fleet", "alpha", "bravo", "charlie")
			session.SCard(ctx, "fleet")
			session.SMembers(ctx, "fleet")
			results, err := session.Exec(ctx)
			if err != nil {
				return err
			}
			green.Printf("batch: added=%v card=%v members=%v\n", results[0], results[1], results[2])

			it := session.SScanIterator("fleet", nil)
			for it.Next(ctx) {
				fmt.Println("  member:", it.Val())
			}
			return it.Err()
		},
	}
}

func parseGeoMembers(parts []string) ([]glidekv.GeoMember, error) {
	members := make([]glidekv.GeoMember, 0, len(parts)/3)
	for i := 0; i+2 < len(parts); i += 3 {
		lon, errLon := strconv.ParseFloat(parts[i], 64)
		lat, errLat := strconv.ParseFloat(parts[i+1], 64)
		if errLon != nil || errLat != nil {
			return nil, fmt.Errorf("invalid coordinates %s,%s", parts[i], parts[i+1])
		}
		members = append(members, glidekv.GeoMember{Longitude: lon, Latitude: lat, Name: parts[i+2]})
	}
	return members, nil
}

func patternArg(parts []string) string {
	if len(parts) > 1 {
		return parts[1]
	}
	return ""
}

func usage(text string) {
	fmt.Println("Usage:", text)
}

func report[T any](value T, err error) {
	if err != nil {
		red.Println(err)
		return
	}
	green.Printf("%v\n", value)
}
