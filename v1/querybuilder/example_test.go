package querybuilder_test

import (
	"context"
	"fmt"

	"github.com/Aleph-Alpha/querybridge/v1/connection"
	"github.com/Aleph-Alpha/querybridge/v1/querybuilder"
	"github.com/Aleph-Alpha/querybridge/v1/relational"
)

// Example showing the relational builder without a database: the statement is
// rendered but never sent.
func Example() {
	qb := relational.NewQueryBuilder(context.Background(), connection.MySQL, nil)
	qb.Select("id", "name").
		From("users").
		Where("id", ">", 1).
		AndWhere("name", "LIKE", "%John%").
		OrderBy("name", "ASC").
		Limit(10)

	fmt.Println(qb.SQL())
	fmt.Println(qb.Bindings())
	// Output:
	// SELECT id, name FROM users WHERE id > ? AND name LIKE ? ORDER BY name ASC LIMIT 10
	// [1 %John%]
}

// Example showing how to open a client from configuration.
func ExampleCreate() {
	ctx := context.Background()

	cfg, err := connection.NewConfig("sqlite", "", ":memory:", "")
	if err != nil {
		fmt.Println(err)
		return
	}

	qb, client, err := querybuilder.Create(ctx, cfg)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer client.GracefulShutdown(ctx)

	fmt.Println(client.Engine(), client.Mode())
	_ = qb
	// Output: sqlite deferred
}
