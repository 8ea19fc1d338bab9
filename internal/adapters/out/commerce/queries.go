// internal/adapters/out/commerce/queries.go
package commerce

// GraphQL documents for the commerce monolith. The cart fragment is shared
// by every cart-returning operation so responses stay shape-compatible.

const cartQueryFragment = `fragment cartQuery on Cart {
  id
  items {
      prices {
          price {
              currency
              value
          }
          total_item_discount {
            value
          }
      }
      product {
          name
          sku
      }
      ... on ConfigurableCartItem {
          configurable_options {
              option_label
              value_label
          }
          configured_variant {
              sku
              name
          }
      }
      quantity
      uid
  }
  prices {
      subtotal_excluding_tax {
          currency
          value
      }
  }
  total_quantity
}`

const getCartQuery = `query getCart($cartId: String!) {
  cart(cart_id: $cartId) {
      ...cartQuery
  }
}
` + cartQueryFragment

const getLoggedInCartIDQuery = `query {
  customerCart {
      id
  }
}`

const createSessionCartMutation = `mutation createSessionCart {
  cartId: createSessionCart
}`

const removeItemFromCartMutation = `mutation removeItemFromCart($cartId: String!, $itemId: ID!) {
  removeItemFromCart(input: { cart_id: $cartId, cart_item_uid: $itemId }) {
      cart {
          ...cartQuery
      }
  }
}
` + cartQueryFragment

const updateCartItemsMutation = `mutation updateCartItems($cartId: String!, $items: [CartItemUpdateInput!]!) {
  updateCartItems(input: { cart_id: $cartId, cart_items: $items }) {
      cart {
          ...cartQuery
      }
  }
}
` + cartQueryFragment

const addProductsToCartMutation = `mutation addProductsToCart($cartId: String!, $cartItems: [CartItemInput!]!) {
  addProductsToCart(cartId: $cartId, cartItems: $cartItems) {
      cart {
          ...cartQuery
      }
      user_errors {
          code
          message
      }
  }
}
` + cartQueryFragment
