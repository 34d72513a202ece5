package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"pet-market/internal/client"
	"pet-market/internal/config"
)

const usage = `usage: pet-market-client <command> [flags]

commands:
  register  -username -email -password        create an account and sign in
  login     -email -password                  sign in
  logout                                      discard the local session
  whoami                                      show the signed-in user
  list      [-species] [-breed] [-gender]     browse listings
  show      -id                               show one listing
  create    -name -species -breed -age -gender -description -price -color -location [-vaccinated] [-sterilized]
  update    -id [listing flags]               change own listing
  delete    -id                               remove own listing
`

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	store, err := client.NewTokenStore(cfg.Client.TokenPath)
	if err != nil {
		logger.Fatalf("token store: %v", err)
	}

	cli := client.New(cfg.Client.BaseURL, store)
	ctx := context.Background()

	// a stale or expired token is silently dropped here
	if err := cli.Bootstrap(ctx); err != nil {
		logger.Fatalf("bootstrap session: %v", err)
	}

	if err := run(ctx, cli, os.Args[1], os.Args[2:]); err != nil {
		logger.Fatalf("%s: %v", os.Args[1], err)
	}
}

func run(ctx context.Context, cli *client.Client, command string, args []string) error {
	switch command {
	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		username := fs.String("username", "", "display name")
		email := fs.String("email", "", "login email")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		user, err := cli.Register(ctx, *username, *email, *password)
		if err != nil {
			return err
		}
		fmt.Printf("registered and signed in as %s <%s>\n", user.Username, user.Email)
		return nil

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "login email")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		user, err := cli.Login(ctx, *email, *password)
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s <%s>\n", user.Username, user.Email)
		return nil

	case "logout":
		if err := cli.Logout(); err != nil {
			return err
		}
		fmt.Println("signed out")
		return nil

	case "whoami":
		user := cli.CurrentUser()
		if user == nil {
			fmt.Println("not signed in")
			return nil
		}
		fmt.Printf("%s <%s>\n", user.Username, user.Email)
		return nil

	case "list":
		fs := flag.NewFlagSet("list", flag.ExitOnError)
		species := fs.String("species", "", "dog or cat")
		breed := fs.String("breed", "", "breed substring")
		gender := fs.String("gender", "", "male or female")
		_ = fs.Parse(args)

		animals, err := cli.ListAnimals(ctx, client.ListFilter{
			Species: *species,
			Breed:   *breed,
			Gender:  *gender,
		})
		if err != nil {
			return err
		}
		for _, animal := range animals {
			fmt.Printf("#%d  %-20s %-4s %-15s %2dy  %8.2f  %s (by %s)\n",
				animal.ID, animal.Name, animal.Species, animal.Breed,
				animal.Age, animal.Price, animal.Location, animal.Author.Username)
		}
		return nil

	case "show":
		fs := flag.NewFlagSet("show", flag.ExitOnError)
		id := fs.Int64("id", 0, "animal id")
		_ = fs.Parse(args)

		animal, err := cli.GetAnimal(ctx, *id)
		if err != nil {
			return err
		}
		printAnimal(animal)
		return nil

	case "create":
		fs := flag.NewFlagSet("create", flag.ExitOnError)
		input := animalFlags(fs)
		_ = fs.Parse(args)

		animal, err := cli.CreateAnimal(ctx, input.value(fs))
		if err != nil {
			return err
		}
		fmt.Printf("created listing #%d\n", animal.ID)
		return nil

	case "update":
		fs := flag.NewFlagSet("update", flag.ExitOnError)
		id := fs.Int64("id", 0, "animal id")
		input := animalFlags(fs)
		_ = fs.Parse(args)

		animal, err := cli.UpdateAnimal(ctx, *id, input.value(fs))
		if err != nil {
			return err
		}
		fmt.Printf("updated listing #%d\n", animal.ID)
		return nil

	case "delete":
		fs := flag.NewFlagSet("delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "animal id")
		_ = fs.Parse(args)

		if err := cli.DeleteAnimal(ctx, *id); err != nil {
			return err
		}
		fmt.Printf("deleted listing #%d\n", *id)
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

type animalFlagSet struct {
	name        *string
	species     *string
	breed       *string
	age         *int
	gender      *string
	description *string
	price       *float64
	color       *string
	vaccinated  *bool
	sterilized  *bool
	location    *string
}

func animalFlags(fs *flag.FlagSet) *animalFlagSet {
	return &animalFlagSet{
		name:        fs.String("name", "", "animal name"),
		species:     fs.String("species", "", "dog or cat"),
		breed:       fs.String("breed", "", "breed"),
		age:         fs.Int("age", 0, "age in years"),
		gender:      fs.String("gender", "", "male or female"),
		description: fs.String("description", "", "description"),
		price:       fs.Float64("price", 0, "adoption price"),
		color:       fs.String("color", "", "color"),
		vaccinated:  fs.Bool("vaccinated", false, "vaccinated"),
		sterilized:  fs.Bool("sterilized", false, "sterilized"),
		location:    fs.String("location", "", "location"),
	}
}

// value only carries flags that were explicitly set, so updates stay partial.
func (a *animalFlagSet) value(fs *flag.FlagSet) client.AnimalInput {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var input client.AnimalInput
	if set["name"] {
		input.Name = a.name
	}
	if set["species"] {
		input.Species = a.species
	}
	if set["breed"] {
		input.Breed = a.breed
	}
	if set["age"] {
		input.Age = a.age
	}
	if set["gender"] {
		input.Gender = a.gender
	}
	if set["description"] {
		input.Description = a.description
	}
	if set["price"] {
		input.Price = a.price
	}
	if set["color"] {
		input.Color = a.color
	}
	if set["vaccinated"] {
		input.Vaccinated = a.vaccinated
	}
	if set["sterilized"] {
		input.Sterilized = a.sterilized
	}
	if set["location"] {
		input.Location = a.location
	}
	return input
}

func printAnimal(animal *client.Animal) {
	fmt.Printf("#%d %s\n", animal.ID, animal.Name)
	fmt.Printf("  species:     %s (%s)\n", animal.Species, animal.Breed)
	fmt.Printf("  age:         %d\n", animal.Age)
	fmt.Printf("  gender:      %s\n", animal.Gender)
	fmt.Printf("  price:       %.2f\n", animal.Price)
	fmt.Printf("  color:       %s\n", animal.Color)
	fmt.Printf("  vaccinated:  %s\n", yesNo(animal.Vaccinated))
	fmt.Printf("  sterilized:  %s\n", yesNo(animal.Sterilized))
	fmt.Printf("  location:    %s\n", animal.Location)
	fmt.Printf("  author:      %s\n", animal.Author.Username)
	if animal.PhotoURL != "" {
		fmt.Printf("  photo:       %s\n", animal.PhotoURL)
	}
	fmt.Printf("  description: %s\n", animal.Description)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
