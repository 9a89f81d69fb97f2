package bytetable_test

import (
	"fmt"
	"log"

	"github.com/tamirms/bytetable"
)

func Example() {
	table, err := bytetable.New()
	if err != nil {
		log.Fatal(err)
	}
	defer table.Close()

	table.Put([]byte("apple"), "red")
	table.Put([]byte("banana"), "yellow")
	table.Put([]byte("grape"), "purple")

	fmt.Println("size:", table.Len())

	if v, ok := table.Get([]byte("apple")); ok {
		fmt.Println("apple ->", v)
	}
	fmt.Println("contains mango:", table.Contains([]byte("mango")))

	// Updating a key replaces the value without growing the table.
	table.Put([]byte("apple"), "green")
	if v, ok := table.Get([]byte("apple")); ok {
		fmt.Println("apple ->", v)
	}

	table.Remove([]byte("banana"))
	fmt.Println("size after remove:", table.Len())

	// Output:
	// size: 3
	// apple -> red
	// contains mango: false
	// apple -> green
	// size after remove: 2
}

func Example_binaryKeys() {
	table, err := bytetable.New()
	if err != nil {
		log.Fatal(err)
	}
	defer table.Close()

	// Keys are raw byte sequences: embedded zero bytes are significant and
	// keys of different lengths never collide, even with a shared prefix.
	table.Put([]byte{0x01, 0x00, 0x02}, "with zero")
	table.Put([]byte{0x01, 0x00, 0x02, 0x03}, "longer")

	v, _ := table.Get([]byte{0x01, 0x00, 0x02})
	fmt.Println(v)
	v, _ = table.Get([]byte{0x01, 0x00, 0x02, 0x03})
	fmt.Println(v)

	// Output:
	// with zero
	// longer
}

func ExampleWithRelease() {
	// With a release callback the table owns stored values and releases
	// each exactly once: on overwrite, remove, clear, or close.
	table, err := bytetable.New(
		bytetable.WithRelease(func(v any) {
			fmt.Println("released:", v)
		}),
	)
	if err != nil {
		log.Fatal(err)
	}

	table.Put([]byte("session"), "token-1")
	table.Put([]byte("session"), "token-2") // releases token-1
	table.Remove([]byte("session"))         // releases token-2

	table.Put([]byte("other"), "token-3")
	table.Close() // releases token-3

	// Output:
	// released: token-1
	// released: token-2
	// released: token-3
}
