package enforcer_test

import (
	"fmt"

	enforcer "github.com/robhayesmba/openapi-enforcer"
	"github.com/robhayesmba/openapi-enforcer/loader"
)

const petstore = `
openapi: 3.0.3
info:
  title: Pets
  version: 1.0.0
servers:
  - url: https://api.example.com/v1
paths:
  /pets/{petId}:
    get:
      parameters:
        - name: petId
          in: path
          required: true
          schema:
            type: integer
        - name: fields
          in: query
          schema:
            type: array
            items:
              type: string
          explode: false
      responses:
        "200":
          description: OK
`

func Example() {
	res, err := loader.LoadBytes([]byte(petstore), loader.FormatYAML)
	if err != nil {
		fmt.Println(err)
		return
	}
	e, err := enforcer.New(res.Data)
	if err != nil {
		fmt.Println(err)
		return
	}

	out := e.Request(enforcer.Request{Method: "GET", Path: "/v1/pets/42?fields=name,tag"})
	fmt.Println(out.Template, out.Path["petId"], out.Query["fields"])
	// Output: /pets/{petId} 42 [name tag]
}

func ExampleValidate() {
	doc := map[string]any{
		"swagger": "2.0",
		"info":    map[string]any{"title": "Pets"},
		"paths":   map[string]any{},
	}
	res, err := enforcer.Validate(doc)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(res.Errors)
	// Output:
	// One or more errors exist in the OpenAPI definition
	//   at: info
	//     Missing required property: version
}
