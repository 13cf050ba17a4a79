// Package suite loads declarative contract suites from YAML.
//
// A suite names the API it targets through request specs, lists cases to
// send in order, and states what each response must look like:
//
//	name: users
//	spec: reqres
//	cases:
//	  - name: single user
//	    method: GET
//	    path: /users/{{userId}}
//	    expect:
//	      status: 200
//	      body:
//	        - path: data.id
//	          equalTo: 2
//	    extract:
//	      email: data.email
package suite
